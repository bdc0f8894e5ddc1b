package util

import (
	"os"
	"path/filepath"
	"strings"
)

// Supported input formats
var (
	VideoExtensions = []string{".mov", ".mp4", ".mkv", ".avi"}
	ImageExtensions = []string{".jpg", ".png"}
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// TempFile creates a temporary file with a specific extension
func TempFile(dir, pattern, ext string) (*os.File, error) {
	return os.CreateTemp(dir, pattern+"*"+ext)
}

// CleanupFiles removes multiple files, ignoring errors
func CleanupFiles(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

// HasExtension reports whether path ends with one of exts, ignoring case
func HasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// IsVideoFile reports whether path has a supported video extension
func IsVideoFile(path string) bool {
	return HasExtension(path, VideoExtensions)
}

// Stem returns the file name without directory and extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SiblingWithExtension returns the first existing file next to path that
// shares its stem and has one of exts, or "" if none exists.
func SiblingWithExtension(path string, exts []string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range exts {
		candidate := base + ext
		if candidate == path {
			continue
		}
		if FileExists(candidate) {
			return candidate
		}
	}
	return ""
}
