package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursekit/coursekit-backend/internal/services"
	"github.com/coursekit/coursekit-backend/internal/types"
)

type PageHandler struct {
	svc services.PageService
}

func NewPageHandler(svc services.PageService) *PageHandler {
	return &PageHandler{svc: svc}
}

// POST /api/modules/:id/pages
func (h *PageHandler) CreatePage(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid module id"})
		return
	}
	var body struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	page, err := h.svc.CreatePage(c.Request.Context(), moduleID, body.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"page": page})
}

// GET /api/modules/:id/pages
func (h *PageHandler) ListPages(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid module id"})
		return
	}
	pages, err := h.svc.ListPagesForModule(c.Request.Context(), moduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// GET /api/pages/:id
func (h *PageHandler) GetPage(c *gin.Context) {
	pageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page id"})
		return
	}
	page, list, err := h.svc.GetPage(c.Request.Context(), pageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "blocks": list})
}

// PUT /api/pages/:id
func (h *PageHandler) ReplaceBlocks(c *gin.Context) {
	pageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page id"})
		return
	}
	var body struct {
		Blocks []*types.Block `json:"blocks"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	canonical, findings, err := h.svc.ReplaceBlocks(c.Request.Context(), pageID, body.Blocks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": canonical, "validation": findings})
}

// POST /api/pages/:id/validate
func (h *PageHandler) ValidatePage(c *gin.Context) {
	pageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page id"})
		return
	}
	findings, err := h.svc.ValidatePage(c.Request.Context(), pageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"validation": findings, "isValid": len(findings) == 0})
}

// GET /api/pages/:id/render
func (h *PageHandler) RenderPage(c *gin.Context) {
	pageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page id"})
		return
	}
	plan, err := h.svc.RenderPage(c.Request.Context(), pageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": plan})
}
