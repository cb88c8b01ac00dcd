package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	maxUploadBytes = 10 << 20
	maxImages      = 10
	formMemory     = 32 << 20
)

var errTooLarge = errors.New("upload too large")

// parseMultipart bounds the request body and parses the form. It writes the
// error response itself and reports whether the handler may continue.
func parseMultipart(c *gin.Context, maxFiles int) bool {
	limit := int64(maxFiles)*maxUploadBytes + (1 << 20)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.Request.ParseMultipartForm(formMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload too large"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return false
	}
	return true
}

// readUpload reads one uploaded file, refusing files over the size limit.
func readUpload(fh *multipart.FileHeader) ([]byte, string, error) {
	if fh.Size > maxUploadBytes {
		return nil, "", errTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxUploadBytes {
		return nil, "", errTooLarge
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

func uploadFailed(c *gin.Context, err error) {
	if errors.Is(err, errTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 10 MB"})
		return
	}
	handleServiceError(c, err)
}
