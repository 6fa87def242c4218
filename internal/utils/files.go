package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBadUpload is returned for uploads with an extension outside the
// image whitelist.
var ErrBadUpload = errors.New("unsupported file type")

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true, // contract scans
}

// SaveUpload stores a multipart file under root/subdir with a random
// name and returns the path relative to root.  The relative path is
// what gets persisted and later served under /uploads.
func SaveUpload(fh *multipart.FileHeader, root, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", ErrBadUpload
	}
	if err := os.MkdirAll(filepath.Join(root, subdir), 0o755); err != nil {
		return "", err
	}
	rel := filepath.Join(subdir, uuid.NewString()+ext)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	dst, err := os.Create(filepath.Join(root, rel))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(filepath.Join(root, rel))
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// RemoveUpload deletes a previously saved upload.  Missing files are
// not an error; rows may outlive files after a partial cleanup.
func RemoveUpload(root, rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
