package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursekit/coursekit-backend/internal/services"
)

type AIGenHandler struct {
	svc services.AIGenService
}

func NewAIGenHandler(svc services.AIGenService) *AIGenHandler {
	return &AIGenHandler{svc: svc}
}

// POST /api/ai/generate
func (h *AIGenHandler) Generate(c *gin.Context) {
	var body struct {
		BlockType     string `json:"blockType"`
		Prompt        string `json:"prompt"`
		CourseContext string `json:"courseContext"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	content, err := h.svc.GenerateBlockContent(c.Request.Context(), body.BlockType, body.Prompt, body.CourseContext)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}
