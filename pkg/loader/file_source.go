package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
)

// FileSource reads manifests below a root directory. Locations are paths
// relative to the root, optionally prefixed with "file://"; paths leaving
// the root are rejected.
type FileSource struct {
	root *os.Root
}

func NewFileSource(dir string) (*FileSource, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	return &FileSource{root: root}, nil
}

func (s *FileSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(keyOf(location), "/")
	if name == "" {
		return nil, ErrInvalidLocation.WithDetail("location", location).WithDetail("reason", "empty path")
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrModuleNotFound.WithDetail("location", location).WithCause(err)
		}
		return nil, ErrInvalidLocation.WithDetail("location", location).WithDetail("reason", err.Error()).WithCause(err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, ErrSourceFetch.WithDetail("location", location).WithCause(err)
	}
	return data, nil
}

func (s *FileSource) Close() error {
	return s.root.Close()
}
