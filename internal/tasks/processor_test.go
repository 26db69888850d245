package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"photovault/internal/config"
	"photovault/internal/storage"
)

var sweepNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newProcessor(t *testing.T) (*Processor, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	p := NewProcessor(
		storage.NewFileStore(fs),
		config.StorageConfig{ZipRoot: "/media/zip"},
		config.JobsConfig{ZipTTL: 24 * time.Hour},
		zerolog.Nop(),
	)
	p.now = func() time.Time { return sweepNow }
	return p, fs
}

func writeFile(t *testing.T, fs afero.Fs, name string, mod time.Time) {
	t.Helper()
	if err := afero.WriteFile(fs, name, []byte("zip"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := fs.Chtimes(name, mod, mod); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
}

func exists(t *testing.T, fs afero.Fs, name string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, name)
	if err != nil {
		t.Fatalf("exists %s: %v", name, err)
	}
	return ok
}

func message(values map[string]any) redis.XMessage {
	return redis.XMessage{ID: "1-0", Values: values}
}

func TestProcessor_ZipDelete(t *testing.T) {
	tests := []struct {
		name string
		path string
		seed string
		gone bool
	}{
		{"removes archive", "/media/zip/abc7", "/media/zip/abc7", true},
		{"already gone", "/media/zip/missing7", "", false},
		{"outside root", "/media/avatars/me.png", "/media/avatars/me.png", false},
		{"traversal", "/media/zip/../faces/f.jpg", "/media/faces/f.jpg", false},
		{"nested under root", "/media/zip/sub/abc7", "/media/zip/sub/abc7", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, fs := newProcessor(t)
			if tt.seed != "" {
				writeFile(t, fs, tt.seed, sweepNow)
			}

			if err := p.Handle(context.Background(), message(ZipDelete(tt.path, 7))); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if tt.seed == "" {
				return
			}
			if got := !exists(t, fs, tt.seed); got != tt.gone {
				t.Errorf("removed %s = %v, want %v", tt.seed, got, tt.gone)
			}
		})
	}
}

func TestProcessor_ZipSweep(t *testing.T) {
	p, fs := newProcessor(t)
	writeFile(t, fs, "/media/zip/old1", sweepNow.Add(-48*time.Hour))
	writeFile(t, fs, "/media/zip/old2", sweepNow.Add(-25*time.Hour))
	writeFile(t, fs, "/media/zip/fresh3", sweepNow.Add(-time.Hour))
	writeFile(t, fs, "/media/thumbnails_big/keep.webp", sweepNow.Add(-72*time.Hour))

	if err := p.Handle(context.Background(), message(ZipSweep())); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	for name, want := range map[string]bool{
		"/media/zip/old1":                 false,
		"/media/zip/old2":                 false,
		"/media/zip/fresh3":               true,
		"/media/thumbnails_big/keep.webp": true,
	} {
		if got := exists(t, fs, name); got != want {
			t.Errorf("exists(%s) = %v, want %v", name, got, want)
		}
	}
}

func TestProcessor_ZipSweepMissingRoot(t *testing.T) {
	p, _ := newProcessor(t)
	if err := p.Handle(context.Background(), message(ZipSweep())); err != nil {
		t.Errorf("Handle() error = %v, want nil", err)
	}
}

func TestProcessor_UnknownType(t *testing.T) {
	p, _ := newProcessor(t)
	if err := p.Handle(context.Background(), message(map[string]any{"type": "thumbnail"})); err != nil {
		t.Errorf("Handle() error = %v, want nil", err)
	}
}
