package util

import (
	"os"
	"path/filepath"
	"strings"
)

const lastDirFile = ".last_dir_videoeditor"

// LastDir returns the directory remembered by the previous file selection,
// falling back to the home directory.
func LastDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	data, err := os.ReadFile(filepath.Join(home, lastDirFile))
	if err != nil {
		return home
	}
	dir := strings.TrimSpace(string(data))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return home
	}
	return dir
}

// SetLastDir remembers dir for the next file selection
func SetLastDir(dir string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(home, lastDirFile), []byte(abs), 0644)
}
