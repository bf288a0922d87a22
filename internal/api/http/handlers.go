// Package http exposes the editor bridge over a gin REST API.
package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/bridge"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/session"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/logging"
	"github.com/A5R13L/gmod-monaco-editor/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	bridge  *bridge.Bridge
	metrics *monitoring.Metrics
	logger  *zap.Logger
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(b *bridge.Bridge, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	return &Handlers{
		bridge:  b,
		metrics: metrics,
		logger:  logging.OrNop(logger),
		started: time.Now(),
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	sessions := r.Group("/sessions")
	sessions.GET("", h.ListSessions)
	sessions.POST("", h.CreateSession)
	sessions.DELETE("", h.CloseAllSessions)
	sessions.PUT("", h.LoadSessions)
	sessions.PUT("/order", h.ReorderSessions)
	sessions.POST("/reopen", h.ReopenSession)
	sessions.POST("/last", h.SwitchToLast)
	sessions.GET("/:name", h.GetSession)
	sessions.DELETE("/:name", h.CloseSession)
	sessions.POST("/:name/focus", h.FocusSession)
	sessions.PUT("/:name/name", h.RenameSession)
	sessions.PUT("/:name/code", h.SetSessionCode)

	files := r.Group("/vfs")
	files.GET("/tree", h.FileTree)
	files.GET("/archive", h.ExportFiles)
	files.PUT("/archive", h.ImportFiles)
	files.GET("/files", h.ListFiles)
	files.GET("/files/*path", h.GetFile)
	files.PUT("/files/*path", h.PutFile)
	files.DELETE("/files/*path", h.DeleteFile)

	r.POST("/search", h.Search)
	r.POST("/search/open", h.OpenResult)

	r.GET("/themes", h.ListThemes)
	r.PUT("/themes/current", h.SetTheme)
	r.GET("/actions", h.ListActions)
	r.POST("/actions/:id/trigger", h.TriggerAction)
	r.GET("/completion", h.CompletionState)
	r.GET("/problems", h.ListProblems)
	r.POST("/problems/:index/goto", h.GotoProblem)
	r.POST("/logs", h.StreamLogs)
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// bindOptional binds a JSON body, treating an empty body as zero values
func bindOptional(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// Health handles the liveness check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": h.bridge.Sessions().Len(),
		"files":    h.bridge.FS().Size(),
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"metrics":  h.metrics.Snapshot(),
	})
}

func (h *Handlers) ListSessions(c *gin.Context) {
	active := ""
	if s, ok := h.bridge.Sessions().Active(); ok {
		active = s.Name
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": h.bridge.GetSessions(),
		"active":   active,
		"next":     h.bridge.NextSessionName(),
		"closed":   len(h.bridge.Sessions().ClosedHistory()),
	})
}

func (h *Handlers) GetSession(c *gin.Context) {
	s, ok := h.bridge.Sessions().Get(c.Param("name"))
	if !ok {
		respondError(c, http.StatusNotFound, "session not found")
		return
	}
	c.JSON(http.StatusOK, s.Serialize())
}

// CreateSession creates or updates a session; an empty body opens a new tab
func (h *Handlers) CreateSession(c *gin.Context) {
	var spec session.Spec
	if !bindOptional(c, &spec) {
		return
	}
	c.JSON(http.StatusCreated, h.bridge.CreateSession(spec))
}

type loadRequest struct {
	Sessions []session.Spec `json:"sessions"`
	Active   string         `json:"active"`
}

// LoadSessions replaces every session
func (h *Handlers) LoadSessions(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	h.bridge.LoadSessions(req.Sessions, req.Active)
	c.JSON(http.StatusOK, gin.H{"sessions": h.bridge.GetSessions()})
}

func (h *Handlers) CloseAllSessions(c *gin.Context) {
	h.bridge.CloseSessions()
	c.Status(http.StatusNoContent)
}

func (h *Handlers) FocusSession(c *gin.Context) {
	if !h.bridge.SetActiveSession(c.Param("name")) {
		respondError(c, http.StatusNotFound, "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) SwitchToLast(c *gin.Context) {
	if !h.bridge.SwitchToLastSession() {
		respondError(c, http.StatusConflict, "no previous session")
		return
	}
	c.Status(http.StatusNoContent)
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handlers) RenameSession(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}

	old := c.Param("name")
	if _, ok := h.bridge.Sessions().Get(old); !ok {
		respondError(c, http.StatusNotFound, "session not found")
		return
	}
	if !h.bridge.RenameSession(req.Name, old) {
		respondError(c, http.StatusConflict, "name already taken")
		return
	}
	c.Status(http.StatusNoContent)
}

// CloseSession closes :name, moving focus to ?switchTo when given
func (h *Handlers) CloseSession(c *gin.Context) {
	name := c.Param("name")
	if _, ok := h.bridge.Sessions().Get(name); !ok {
		respondError(c, http.StatusNotFound, "session not found")
		return
	}
	if !h.bridge.CloseSession(name, c.Query("switchTo")) {
		respondError(c, http.StatusConflict, "cannot switch to that session")
		return
	}
	c.Status(http.StatusNoContent)
}

type orderRequest struct {
	Names []string `json:"names" binding:"required"`
}

func (h *Handlers) ReorderSessions(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "names are required")
		return
	}
	h.bridge.ReorderSessions(req.Names)
	c.JSON(http.StatusOK, gin.H{"names": h.bridge.Sessions().Names()})
}

func (h *Handlers) ReopenSession(c *gin.Context) {
	s, ok := h.bridge.ReopenSession()
	if !ok {
		respondError(c, http.StatusConflict, "no closed session to reopen")
		return
	}
	c.JSON(http.StatusOK, s)
}

type codeRequest struct {
	Code string `json:"code"`
}

func (h *Handlers) SetSessionCode(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !h.bridge.SetSessionCode(c.Param("name"), req.Code) {
		respondError(c, http.StatusNotFound, "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}
