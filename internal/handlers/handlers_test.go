package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"photovault/internal/config"
	"photovault/internal/gateway"
	"photovault/internal/media"
	"photovault/internal/models"
	"photovault/internal/repository"
	"photovault/internal/security"
	"photovault/internal/storage"
	"photovault/internal/tasks"
)

const testSecret = "handler-secret-0123456789-abcdefghijkl"

func init() {
	gin.SetMode(gin.TestMode)
}

type library struct {
	photos map[string]models.Photo
	users  map[int64]models.User
}

func (l library) FindPhotoByHash(_ context.Context, hash string) (models.Photo, error) {
	photo, ok := l.photos[hash]
	if !ok {
		return models.Photo{}, repository.ErrPhotoNotFound
	}
	return photo, nil
}

func (l library) FindUserByID(_ context.Context, id int64) (models.User, error) {
	user, ok := l.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

type recordingQueue struct {
	payloads []map[string]any
	err      error
}

func (q *recordingQueue) Enqueue(_ context.Context, payload map[string]any) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.payloads = append(q.payloads, payload)
	return "42-0", nil
}

type fixture struct {
	engine *gin.Engine
	fs     afero.Fs
	queue  *recordingQueue
}

func newFixture(t *testing.T, db, cache HealthCheck) *fixture {
	t.Helper()

	cfg := &config.AppConfig{
		Environment: "test",
		Storage: config.StorageConfig{
			MediaRoot:    "/media",
			ZipRoot:      "/media/zip",
			EmbeddedRoot: "/media/embedded_media",
		},
		Security: config.SecurityConfig{JWTSecret: testSecret, CookieName: "jwt"},
	}

	fs := afero.NewMemMapFs()
	store := storage.NewFileStore(fs)
	auth, err := security.NewAuthenticator(testSecret)
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}
	lib := library{
		photos: map[string]models.Photo{
			"pub": {ImageHash: "pub", OwnerID: 1, Public: true, OriginalPath: "/data/pub.jpg"},
			"own": {ImageHash: "own", OwnerID: 1, OriginalPath: "/data/own.jpg"},
		},
		users: map[int64]models.User{1: {ID: 1, Username: "ana"}},
	}
	log := zerolog.Nop()
	gw := gateway.New(
		auth,
		lib,
		gateway.NewFileResolver(store, cfg.Storage, log),
		media.NewContentTypeResolver(media.NewStoreSniffer(store)),
		store,
		log,
	)

	queue := &recordingQueue{}
	engine := gin.New()
	NewHandlerSet(log, cfg, gw, queue, db, cache).Register(engine.Group("/api"))

	for name, body := range map[string]string{
		"/media/thumbnails_big/pub.webp": "public-thumb",
		"/media/thumbnails_big/own.webp": "owned-thumb",
		"/media/zip/bundle1":             "zip-bytes",
	} {
		if err := afero.WriteFile(fs, name, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	return &fixture{engine: engine, fs: fs, queue: queue}
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	tok, err := security.GenerateAccessToken(testSecret, userID, time.Now().Add(-time.Minute), 5*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	return tok
}

func (f *fixture) do(method, target string, prep func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if prep != nil {
		prep(req)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func withCookie(tok string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "jwt", Value: tok})
	}
}

func TestServeMedia(t *testing.T) {
	f := newFixture(t, nil, nil)

	tests := []struct {
		name   string
		target string
		prep   func(*http.Request)
		status int
		body   string
	}{
		{"public anonymous", "/api/media/thumbnails_big/pub.webp", nil, http.StatusOK, "public-thumb"},
		{"private anonymous", "/api/media/thumbnails_big/own.webp", nil, http.StatusForbidden, ""},
		{"private owner cookie", "/api/media/thumbnails_big/own.webp", withCookie(token(t, 1)), http.StatusOK, "owned-thumb"},
		{"private owner header", "/api/media/thumbnails_big/own.webp", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token(t, 1))
		}, http.StatusOK, "owned-thumb"},
		{"private stranger", "/api/media/thumbnails_big/own.webp", withCookie(token(t, 2)), http.StatusNotFound, ""},
		{"unknown photo", "/api/media/thumbnails_big/nope.webp", nil, http.StatusNotFound, ""},
		{"no category", "/api/media/pub.webp", nil, http.StatusNotFound, ""},
		{"zip owner", "/api/media/zip/bundle", withCookie(token(t, 1)), http.StatusOK, "zip-bytes"},
		{"zip anonymous", "/api/media/zip/bundle", nil, http.StatusForbidden, ""},
		{"zip other user", "/api/media/zip/bundle", withCookie(token(t, 2)), http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.target, tt.prep)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestServeMedia_Headers(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodGet, "/api/media/thumbnails_big/pub.webp", nil)
	if got := rec.Header().Get("Content-Type"); got != "image/webp" {
		t.Errorf("Content-Type = %q, want image/webp", got)
	}

	head := f.do(http.MethodHead, "/api/media/thumbnails_big/pub.webp", nil)
	if head.Code != http.StatusOK {
		t.Fatalf("HEAD status = %d", head.Code)
	}
	if head.Body.Len() != 0 {
		t.Errorf("HEAD body length = %d, want 0", head.Body.Len())
	}

	ranged := f.do(http.MethodGet, "/api/media/thumbnails_big/pub.webp", func(r *http.Request) {
		r.Header.Set("Range", "bytes=0-5")
	})
	if ranged.Code != http.StatusPartialContent {
		t.Fatalf("range status = %d, want 206", ranged.Code)
	}
	if ranged.Body.String() != "public" {
		t.Errorf("range body = %q, want %q", ranged.Body.String(), "public")
	}
}

func TestDeleteZip(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodDelete, "/api/delete/zip/bundle", withCookie(token(t, 1)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if len(f.queue.payloads) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(f.queue.payloads))
	}
	got := f.queue.payloads[0]
	if got["type"] != tasks.TypeZipDelete || got["path"] != "/media/zip/bundle1" {
		t.Errorf("payload = %v", got)
	}
	if ok, _ := afero.Exists(f.fs, "/media/zip/bundle1"); !ok {
		t.Error("api must not remove the archive itself")
	}

	if rec := f.do(http.MethodDelete, "/api/delete/zip/bundle", nil); rec.Code != http.StatusForbidden {
		t.Errorf("anonymous status = %d, want 403", rec.Code)
	}

	f.queue.err = errors.New("redis down")
	if rec := f.do(http.MethodDelete, "/api/delete/zip/bundle", withCookie(token(t, 1))); rec.Code != http.StatusInternalServerError {
		t.Errorf("enqueue failure status = %d, want 500", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name   string
		db     HealthCheck
		cache  HealthCheck
		status int
	}{
		{"healthy", ok, ok, http.StatusOK},
		{"database down", down, ok, http.StatusServiceUnavailable},
		{"redis down", ok, down, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.db, tt.cache)
			if rec := f.do(http.MethodGet, "/api/healthz", nil); rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestSplitMediaPath(t *testing.T) {
	tests := []struct {
		raw      string
		category string
		filename string
	}{
		{"/thumbnails_big/abc.webp", "thumbnails_big", "abc.webp"},
		{"/square_thumbnails/nested/abc.webp", "square_thumbnails/nested", "abc.webp"},
		{"/abc.webp", "", "abc.webp"},
		{"/zip/", "zip", ""},
	}
	for _, tt := range tests {
		category, filename := splitMediaPath(tt.raw)
		if category != tt.category || filename != tt.filename {
			t.Errorf("splitMediaPath(%q) = (%q, %q), want (%q, %q)", tt.raw, category, filename, tt.category, tt.filename)
		}
	}
}
