package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/retail_backend/models"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

func uploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

// publicUploadUrl builds the URL a stored file is served under. The static
// mount is always /uploads regardless of where UPLOAD_DIR points on disk.
func publicUploadUrl(parts ...string) string {
	return "/uploads/" + path.Join(parts...)
}

// UploadProductImage stores a product image on local disk, generates a 200px
// thumbnail and records both URLs on the product.
func UploadProductImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if _, err := models.GetProduct(c.Request.Context(), id); err != nil {
			respondError(c, "uploads.go", "UploadProductImage", err)
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "image file is required"})
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"message": "file size exceeds 5MB limit"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, "uploads.go", "UploadProductImage", err)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, "uploads.go", "UploadProductImage", err)
			return
		}

		mimeType := http.DetectContentType(data)
		if !imageMimeTypes[mimeType] {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unsupported image type"})
			return
		}

		ext := ".jpg"
		if mimeType == "image/png" {
			ext = ".png"
		}
		baseName := fmt.Sprintf("product-%d-%s", id, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])

		dir := filepath.Join(uploadDir(), "products")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			respondError(c, "uploads.go", "UploadProductImage", err)
			return
		}

		imagePath := filepath.Join(dir, baseName+ext)
		if err := os.WriteFile(imagePath, data, 0o644); err != nil {
			respondError(c, "uploads.go", "UploadProductImage", err)
			return
		}

		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "could not decode image"})
			return
		}
		thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)
		thumbPath := filepath.Join(dir, baseName+"-thumb.jpg")
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
			respondError(c, "uploads.go", "UploadProductImage", err)
			return
		}
		if err := os.WriteFile(thumbPath, buf.Bytes(), 0o644); err != nil {
			respondError(c, "uploads.go", "UploadProductImage", err)
			return
		}

		imageUrl := publicUploadUrl("products", baseName+ext)
		thumbnailUrl := publicUploadUrl("products", baseName+"-thumb.jpg")
		product, err := models.SetProductImage(c.Request.Context(), id, imageUrl, thumbnailUrl)
		if err != nil {
			respondError(c, "uploads.go", "UploadProductImage", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
