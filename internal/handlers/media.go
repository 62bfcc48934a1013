package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursekit/coursekit-backend/internal/services"
)

type MediaHandler struct {
	svc services.MediaService
}

func NewMediaHandler(svc services.MediaService) *MediaHandler {
	return &MediaHandler{svc: svc}
}

// POST /api/uploads
func (h *MediaHandler) Upload(c *gin.Context) {
	kind := services.UploadKind(c.PostForm("kind"))
	if kind == "" {
		kind = services.UploadKindImage
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.svc.Upload(c.Request.Context(), kind, fileHeader.Filename, contentType, fileHeader.Size, file, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
