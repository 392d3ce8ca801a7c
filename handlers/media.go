package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadSize caps media uploads at 50MB.
const MaxUploadSize = 50 << 20

var photoMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

var videoMimeTypes = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
}

// AllowedMediaType reports whether a mimetype is acceptable for the given
// upload field ("photo" or "video").
func AllowedMediaType(field, mimetype string) bool {
	switch field {
	case "photo":
		return photoMimeTypes[strings.ToLower(mimetype)]
	case "video":
		return videoMimeTypes[strings.ToLower(mimetype)]
	}
	return false
}

// SafeFilename rejects names that could escape the upload directory.
func SafeFilename(name string) bool {
	return name != "" && name == filepath.Base(name) && !strings.Contains(name, "..")
}

// UploadDir returns the media storage directory, creating it if needed.
func UploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	os.MkdirAll(dir, 0o755)
	return dir
}

// UploadPhoto stores a multipart photo on local disk and returns its URL.
func UploadPhoto(c *gin.Context) {
	uploadMedia(c, "photo")
}

// UploadVideo stores a multipart video on local disk and returns its URL.
func UploadVideo(c *gin.Context) {
	uploadMedia(c, "video")
}

func uploadMedia(c *gin.Context, field string) {
	if _, ok := callerID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	file, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if file.Size > MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the 50MB limit"})
		return
	}

	mimetype := file.Header.Get("Content-Type")
	if !AllowedMediaType(field, mimetype) {
		if field == "photo" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image type. Only JPG, JPEG, and PNG are allowed"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid video type. Only MP4 and MOV are allowed"})
		}
		return
	}

	filename := field + "-" + uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dest := filepath.Join(UploadDir(), filename)

	if err := c.SaveUploadedFile(file, dest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	url := scheme + "://" + c.Request.Host + "/uploads/" + filename

	c.JSON(http.StatusOK, gin.H{
		"url":          url,
		"filename":     filename,
		"originalname": file.Filename,
		"mimetype":     mimetype,
		"size":         file.Size,
	})
}

// DeleteMedia removes a previously uploaded file by its stored filename.
func DeleteMedia(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	filename := c.Param("filename")
	if !SafeFilename(filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filename"})
		return
	}

	path := filepath.Join(UploadDir(), filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	if err := os.Remove(path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
