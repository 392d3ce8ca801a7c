package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedMediaType(t *testing.T) {
	for _, mt := range []string{"image/jpeg", "image/jpg", "image/png", "IMAGE/PNG"} {
		assert.True(t, AllowedMediaType("photo", mt), mt)
	}
	for _, mt := range []string{"image/gif", "image/webp", "video/mp4", ""} {
		assert.False(t, AllowedMediaType("photo", mt), mt)
	}

	for _, mt := range []string{"video/mp4", "video/quicktime"} {
		assert.True(t, AllowedMediaType("video", mt), mt)
	}
	for _, mt := range []string{"video/webm", "image/png", "application/octet-stream"} {
		assert.False(t, AllowedMediaType("video", mt), mt)
	}

	assert.False(t, AllowedMediaType("audio", "audio/mpeg"))
}

func TestSafeFilename(t *testing.T) {
	safe := []string{
		"photo-3f1a.jpg",
		"video-9cc2.mp4",
		"a.png",
	}
	for _, name := range safe {
		assert.True(t, SafeFilename(name), name)
	}

	unsafe := []string{
		"",
		"../etc/passwd",
		"..",
		"dir/file.jpg",
		"/absolute.png",
		"..hidden..jpg",
	}
	for _, name := range unsafe {
		assert.False(t, SafeFilename(name), name)
	}
}
