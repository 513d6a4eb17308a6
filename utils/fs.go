package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PartSuffix marks a download that has not finished yet
const PartSuffix = ".part"

// FileOperations provides file system utilities
type FileOperations struct{}

// NewFileOperations creates a new FileOperations instance
func NewFileOperations() *FileOperations {
	return &FileOperations{}
}

// EnsureDir creates the parent directory of path if it doesn't exist
func (f *FileOperations) EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// FileExists checks if a file exists
func (f *FileOperations) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file
func (f *FileOperations) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// AtomicRename performs an atomic file rename operation
func (f *FileOperations) AtomicRename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// PartPath returns the in-progress path for outputPath
func (f *FileOperations) PartPath(outputPath string) string {
	return outputPath + PartSuffix
}

// DetectPartialDownload checks if a partial download exists and returns its size
func (f *FileOperations) DetectPartialDownload(outputPath string) (bool, int64, error) {
	info, err := os.Stat(f.PartPath(outputPath))
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}

	return true, info.Size(), nil
}

// CreatePartialFile creates or truncates a partial download file and returns
// it open for writing
func (f *FileOperations) CreatePartialFile(partPath string) (*os.File, error) {
	file, err := os.OpenFile(partPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create partial file: %w", err)
	}
	return file, nil
}

// RemovePartial deletes a partial file, ignoring a missing one
func (f *FileOperations) RemovePartial(partPath string) error {
	if err := os.Remove(partPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SanitizeFilename reduces a server supplied name to a safe base name
func SanitizeFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(filepath.FromSlash(name))
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("unusable filename %q", name)
	}
	return base, nil
}
