package pkg

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SaveUpload stores an uploaded file under dir/<uuid>/<basename> and returns its path.
// Every upload gets its own folder so earlier versions stay available.
func SaveUpload(file *multipart.FileHeader, dir string) (string, error) {
	uploadDir := filepath.Join(dir, uuid.NewString())
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := filepath.Base(file.Filename)
	if filename == "." || filename == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", file.Filename)
	}
	dstPath := filepath.Join(uploadDir, filename)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening uploaded file: %w", err)
	}
	defer src.Close()

	if err := writeFile(dstPath, src); err != nil {
		return "", err
	}
	return dstPath, nil
}

// Install copies src to root/name, replacing any previous file in one rename.
// name is relative and may contain folders; it must stay inside root.
func Install(src, root, name string) (string, error) {
	dstPath := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, dstPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q escapes %s", name, root)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	tmp := dstPath + ".tmp-" + uuid.NewString()
	if err := writeFile(tmp, in); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, dstPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("error replacing %s: %w", dstPath, err)
	}
	return dstPath, nil
}

func writeFile(path string, r io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating destination file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return fmt.Errorf("error copying file contents: %w", err)
	}
	return dst.Close()
}
