package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/search"
	"github.com/A5R13L/gmod-monaco-editor/internal/domain/vfs"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxArchiveSize bounds an uploaded workspace archive
const maxArchiveSize = 64 << 20

func (h *Handlers) FileTree(c *gin.Context) {
	c.JSON(http.StatusOK, h.bridge.FileTree())
}

// ExportFiles downloads the VFS as a tar archive; ?compression picks
// gzip (default), zstd or none
func (h *Handlers) ExportFiles(c *gin.Context) {
	compression := c.DefaultQuery("compression", vfs.CompressionGzip)

	var buf bytes.Buffer
	n, err := h.bridge.ExportFiles(c.Request.Context(), &buf, compression)
	if err != nil {
		if errors.Is(err, vfs.ErrUnknownCompression) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to export files", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "export failed")
		return
	}

	contentType := "application/x-tar"
	switch compression {
	case vfs.CompressionGzip:
		contentType = "application/gzip"
	case vfs.CompressionZstd:
		contentType = "application/zstd"
	}
	c.Header("X-File-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// ImportFiles adds the files of an uploaded tar archive
func (h *Handlers) ImportFiles(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxArchiveSize)
	n, err := h.bridge.ImportFiles(c.Request.Context(), body)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": n})
}

// ListFiles lists every path, or those matching ?glob
func (h *Handlers) ListFiles(c *gin.Context) {
	if pattern := c.Query("glob"); pattern != "" {
		c.JSON(http.StatusOK, gin.H{"files": h.bridge.FS().Glob(pattern)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": h.bridge.ListFiles()})
}

func (h *Handlers) GetFile(c *gin.Context) {
	content, ok := h.bridge.GetFile(c.Param("path"))
	if !ok {
		respondError(c, http.StatusNotFound, "file not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

type fileRequest struct {
	Content string `json:"content"`
}

func (h *Handlers) PutFile(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.bridge.AddFile(c.Param("path"), req.Content); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) DeleteFile(c *gin.Context) {
	if !h.bridge.RemoveFile(c.Param("path")) {
		respondError(c, http.StatusNotFound, "file not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// Search runs a workspace search; the response carries flat and grouped results
func (h *Handlers) Search(c *gin.Context) {
	var opts search.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		respondError(c, http.StatusBadRequest, "invalid search options")
		return
	}
	results := h.bridge.Search(c.Request.Context(), opts)
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"groups":  results.Grouped(),
		"count":   len(results),
	})
}

func (h *Handlers) OpenResult(c *gin.Context) {
	var res search.Result
	if err := c.ShouldBindJSON(&res); err != nil {
		respondError(c, http.StatusBadRequest, "invalid result")
		return
	}
	if err := h.bridge.OpenResult(res); err != nil {
		respondError(c, http.StatusConflict, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
