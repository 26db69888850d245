package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"

	"photovault/internal/config"
)

var ErrNotExist = errors.New("object does not exist")

type Object interface {
	io.ReadSeekCloser
}

type ObjectInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store is read access to stored media. Names are slash separated absolute
// paths; backends map them onto their own namespace.
type Store interface {
	Stat(ctx context.Context, name string) (ObjectInfo, error)
	Open(ctx context.Context, name string) (Object, ObjectInfo, error)
}

// Janitor is the write side used only by cleanup tasks.
type Janitor interface {
	Remove(ctx context.Context, name string) error
	ListOlderThan(ctx context.Context, dir string, cutoff time.Time) ([]string, error)
}

type Backend interface {
	Store
	Janitor
}

func New(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case config.StorageBackendLocal:
		return NewFileStore(afero.NewOsFs()), nil
	case config.StorageBackendS3:
		return NewObjectStore(cfg)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
