// server/internal/api/handlers/metadata_handler.go
package handlers

import (
	"net/http"

	"coffee-coop-ledger-api-server/internal/s3"

	"github.com/gin-gonic/gin"
)

type MetadataHandler struct {
	S3Uploader *s3.Uploader
}

// UploadMetadata nhận một file metadata/evidence, đẩy lên S3 và trả về
// content-addressed ref để caller dùng trong createBatch / advanceStage.
// Ledger không bao giờ đọc lại nội dung này.
func (h *MetadataHandler) UploadMetadata(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A 'file' form field is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ref, url, err := h.S3Uploader.UploadDocument(c.Request.Context(), file, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload document", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":      "success",
		"metadataRef": ref,
		"url":         url,
	})
}
