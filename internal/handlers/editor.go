package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursekit/coursekit-backend/internal/services"
)

type EditorHandler struct {
	svc services.EditorService
}

func NewEditorHandler(svc services.EditorService) *EditorHandler {
	return &EditorHandler{svc: svc}
}

func editorPageID(c *gin.Context) (uuid.UUID, bool) {
	pageID, err := uuid.Parse(c.Param("pageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page id"})
		return uuid.Nil, false
	}
	return pageID, true
}

// POST /api/editor/:pageId/open
func (h *EditorHandler) Open(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	list, err := h.svc.Open(c.Request.Context(), pageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": list})
}

// POST /api/editor/:pageId/blocks
func (h *EditorHandler) AddBlock(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	var body struct {
		Type    string `json:"type"`
		AtIndex *int   `json:"atIndex"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	atIndex := -1
	if body.AtIndex != nil {
		atIndex = *body.AtIndex
	}
	block, err := h.svc.AddBlock(c.Request.Context(), pageID, body.Type, atIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"block": block})
}

// DELETE /api/editor/:pageId/blocks/:blockId
func (h *EditorHandler) RemoveBlock(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveBlock(c.Request.Context(), pageID, c.Param("blockId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// POST /api/editor/:pageId/blocks/:blockId/move
func (h *EditorHandler) MoveBlock(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	var body struct {
		ToIndex int `json:"toIndex"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.MoveBlock(c.Request.Context(), pageID, c.Param("blockId"), body.ToIndex); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "moved"})
}

// POST /api/editor/:pageId/blocks/:blockId/duplicate
func (h *EditorHandler) DuplicateBlock(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	block, err := h.svc.DuplicateBlock(c.Request.Context(), pageID, c.Param("blockId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"block": block})
}

// PATCH /api/editor/:pageId/blocks/:blockId
func (h *EditorHandler) PatchBlock(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	block, result, err := h.svc.PatchBlock(c.Request.Context(), pageID, c.Param("blockId"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"block": block, "validation": result})
}

// GET /api/editor/:pageId/status
func (h *EditorHandler) Status(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	status, err := h.svc.Status(c.Request.Context(), pageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// POST /api/editor/:pageId/retry
func (h *EditorHandler) Retry(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	if err := h.svc.Retry(c.Request.Context(), pageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "retrying"})
}

// POST /api/editor/:pageId/flush
func (h *EditorHandler) Flush(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	if err := h.svc.Flush(c.Request.Context(), pageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}

// POST /api/editor/:pageId/close
func (h *EditorHandler) Close(c *gin.Context) {
	pageID, ok := editorPageID(c)
	if !ok {
		return
	}
	if err := h.svc.Close(c.Request.Context(), pageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}
