package fileutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/skillmeat/skillmeat-cli/util/common/errors"
)

// validatePath checks if a path is valid and accessible.
// Returns an error if the path is empty or contains characters that are
// invalid on the platforms we support.
func validatePath(path string) error {
	if path == "" {
		return errors.NewValidationError("path", "path cannot be empty")
	}

	// Check for invalid characters in path
	if strings.ContainsAny(path, "<>|?*") {
		return errors.NewValidationError("path", "path contains invalid characters")
	}

	return nil
}

// ResetDir removes a directory if it exists and creates a fresh empty one.
func ResetDir(path string) error {
	if err := validatePath(path); err != nil {
		return err
	}

	if err := os.RemoveAll(path); err != nil {
		return errors.NewFileError(path, "remove", err)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.NewFileError(path, "create", err)
	}

	return nil
}

// ReadFile reads the entire file and returns its contents.
// It validates the path and checks if the file exists and is readable.
func ReadFile(path string) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewFileError(path, "stat", err)
	}
	if info.IsDir() {
		return nil, errors.NewValidationError("path", "path is a directory, expected a file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewFileError(path, "read", err)
	}
	return data, nil
}

// WriteFile writes data to a file, creating parent directories if needed.
func WriteFile(path string, data []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewFileError(path, "create_dir", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileError(path, "write", err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file in the target directory
// and renames it into place, so readers never observe a partial write.
func WriteFileAtomic(path string, data []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewFileError(path, "create_dir", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.NewFileError(path, "create_tmp", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewFileError(path, "write_tmp", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewFileError(path, "close_tmp", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.NewFileError(path, "rename", err)
	}
	return nil
}

// CopyFile copies a file from src to dst, creating parent directories
// for dst if needed. File mode of the source is preserved.
func CopyFile(src, dst string) error {
	if err := validatePath(src); err != nil {
		return err
	}
	if err := validatePath(dst); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return errors.NewFileError(src, "stat", err)
	}
	if srcInfo.IsDir() {
		return errors.NewValidationError("src", "source path is a directory, expected a file")
	}

	dstDir := filepath.Dir(dst)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return errors.NewFileError(dst, "create_dir", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return errors.NewFileError(src, "open", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return errors.NewFileError(dst, "create", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.NewFileError(dst, "copy", err)
	}
	return dstFile.Sync()
}

// CopyDir recursively copies the directory tree rooted at src into dst.
// Symlinks are skipped: collection and bundle content is regular files only.
func CopyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return errors.NewFileError(src, "stat", err)
	}
	if !srcInfo.IsDir() {
		return errors.NewValidationError("src", "source path is not a directory")
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return errors.NewFileError(dst, "create", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.NewFileError(src, "read_dir", err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		if entry.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		if err := CopyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

// Exists checks if a file or directory exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir checks if the path is a directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile checks if the path is a regular file
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
