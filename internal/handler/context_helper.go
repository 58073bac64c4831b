package handler

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/civiclens/civiclens-api/internal/middleware"
	"github.com/civiclens/civiclens-api/internal/models"
	"github.com/civiclens/civiclens-api/internal/service"
)

func principalFromContext(c *gin.Context) *models.Principal {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims.Principal()
}

func fileUploadFromHeader(header *multipart.FileHeader) (*service.FileUpload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	upload := &service.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}
	return upload, func() { _ = file.Close() }, nil
}
