package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carsource_backend/internal/repositories"
	"carsource_backend/internal/storage"
	"carsource_backend/pkg/apperrors"
)

// FileHandler serves stored files when the local storage driver is in
// use. With S3/R2 the URLs point at the bucket and this handler is
// never registered.
type FileHandler struct {
	BaseHandler
	store      storage.Storage
	uploadRepo repositories.UploadRepository
}

func NewFileHandler(base BaseHandler, store storage.Storage, uploadRepo repositories.UploadRepository) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		store:       store,
		uploadRepo:  uploadRepo,
	}
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/files/*path", h.Serve)
}

func (h *FileHandler) Serve(c *gin.Context) {
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" || strings.Contains(path, "..") {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid file path"))
		return
	}

	reader, err := h.store.Get(c.Request.Context(), path)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewNotFoundError("file", "File not found"))
		return
	}
	defer reader.Close()

	contentType := "application/octet-stream"
	if upload, err := h.uploadRepo.GetByPath(path); err == nil && upload != nil {
		contentType = upload.ContentType
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	io.Copy(c.Writer, reader)
}
