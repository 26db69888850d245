package storage

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"time"

	"github.com/spf13/afero"
)

type FileStore struct {
	fs afero.Fs
}

func NewFileStore(fs afero.Fs) *FileStore {
	return &FileStore{fs: fs}
}

func (s *FileStore) Stat(_ context.Context, name string) (ObjectInfo, error) {
	fi, err := s.fs.Stat(name)
	if err != nil {
		return ObjectInfo{}, translate(err)
	}
	if fi.IsDir() {
		return ObjectInfo{}, ErrNotExist
	}
	return ObjectInfo{Name: name, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

func (s *FileStore) Open(ctx context.Context, name string) (Object, ObjectInfo, error) {
	info, err := s.Stat(ctx, name)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, ObjectInfo{}, translate(err)
	}
	return f, info, nil
}

func (s *FileStore) Remove(_ context.Context, name string) error {
	return translate(s.fs.Remove(name))
}

func (s *FileStore) ListOlderThan(_ context.Context, dir string, cutoff time.Time) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, translate(err)
	}

	var stale []string
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		if entry.ModTime().Before(cutoff) {
			stale = append(stale, path.Join(dir, entry.Name()))
		}
	}
	return stale, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return err
}
