package workbook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// DirSource reads workbooks from a directory tree.
type DirSource struct {
	fsys fs.FS
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{fsys: os.DirFS(root), root: root}
}

// NewFSSource wraps an arbitrary fs.FS, for example an embed.FS.
func NewFSSource(fsys fs.FS, label string) *DirSource {
	return &DirSource{fsys: fsys, root: label}
}

func (s *DirSource) Rows(ctx context.Context, name string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(path.Join(s.root, name))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path.Join(s.root, name), err)
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path.Join(s.root, name), err)
	}
	return rows, nil
}

func (s *DirSource) String() string {
	return "dir:" + s.root
}
