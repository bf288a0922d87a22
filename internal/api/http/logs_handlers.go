package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxLogBatch bounds how many entries one request may carry
const maxLogBatch = 200

// UILogEntry is a console line forwarded by the editor page
type UILogEntry struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context"`
	Time    string                 `json:"timestamp"`
}

// UILogStreamRequest is a batch of UI log entries
type UILogStreamRequest struct {
	Entries []UILogEntry `json:"entries"`
}

// StreamLogs writes UI log entries into the server log
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req UILogStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid log request format")
		return
	}
	if len(req.Entries) == 0 {
		respondError(c, http.StatusBadRequest, "no log entries provided")
		return
	}
	if len(req.Entries) > maxLogBatch {
		respondError(c, http.StatusRequestEntityTooLarge, "too many log entries")
		return
	}

	logger := h.logger.Named("ui")
	for _, entry := range req.Entries {
		fields := make([]zap.Field, 0, len(entry.Context)+1)
		fields = append(fields, zap.String("ui_timestamp", entry.Time))
		for key, value := range entry.Context {
			fields = append(fields, zap.Any(key, value))
		}

		switch entry.Level {
		case "error":
			logger.Error(entry.Message, fields...)
		case "warn":
			logger.Warn(entry.Message, fields...)
		case "debug", "verbose":
			logger.Debug(entry.Message, fields...)
		default:
			logger.Info(entry.Message, fields...)
		}
	}

	c.JSON(http.StatusOK, gin.H{"entries_processed": len(req.Entries)})
}
