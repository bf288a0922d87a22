package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/A5R13L/gmod-monaco-editor/internal/domain/theme"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"themes":  h.bridge.Themes().List(),
		"current": h.bridge.Themes().Current().ID,
	})
}

type themeRequest struct {
	ID string `json:"id" binding:"required"`
}

func (h *Handlers) SetTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "id is required")
		return
	}
	if err := h.bridge.SetTheme(req.ID); err != nil {
		if errors.Is(err, theme.ErrUnknownTheme) {
			respondError(c, http.StatusNotFound, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) ListActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": h.bridge.Actions().List()})
}

func (h *Handlers) TriggerAction(c *gin.Context) {
	if !h.bridge.TriggerAction(c.Param("id")) {
		respondError(c, http.StatusNotFound, "action not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// CompletionState dumps the completion store
func (h *Handlers) CompletionState(c *gin.Context) {
	c.JSON(http.StatusOK, h.bridge.Completion().State())
}

// ListProblems returns the lint markers of the visible session
func (h *Handlers) ListProblems(c *gin.Context) {
	c.JSON(http.StatusOK, h.bridge.Problems())
}

func (h *Handlers) GotoProblem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "index must be a number")
		return
	}
	if !h.bridge.GotoProblem(index) {
		respondError(c, http.StatusNotFound, "problem not found")
		return
	}
	c.Status(http.StatusNoContent)
}
