package gateway

import (
	"context"
	"errors"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"photovault/internal/config"
	"photovault/internal/models"
	"photovault/internal/storage"
)

// FileResolver maps a classified resource onto a stored file. It only
// probes; it never creates or modifies anything.
type FileResolver struct {
	store        storage.Store
	mediaRoot    string
	zipRoot      string
	embeddedRoot string
	log          zerolog.Logger
}

func NewFileResolver(store storage.Store, cfg config.StorageConfig, log zerolog.Logger) *FileResolver {
	return &FileResolver{
		store:        store,
		mediaRoot:    cfg.MediaRoot,
		zipRoot:      cfg.ZipRoot,
		embeddedRoot: cfg.EmbeddedRoot,
		log:          log,
	}
}

// Target carries what resolution needs beyond the path itself.
type Target struct {
	Resource Resource
	UserID   int64
	Photo    *models.Photo
	Prefs    *models.User
}

func (r *FileResolver) Resolve(ctx context.Context, t Target) (string, error) {
	res := t.Resource

	switch res.Class {
	case ClassThumbnail:
		return r.first(ctx, r.thumbnailCandidates(t))
	case ClassFace:
		return r.first(ctx, []string{path.Join(r.mediaRoot, "faces", res.Filename)})
	case ClassZip:
		return r.first(ctx, []string{r.ZipPath(res.Filename, t.UserID)})
	case ClassAvatar:
		return r.first(ctx, []string{path.Join(r.mediaRoot, "avatars", res.Filename)})
	case ClassEmbeddedMedia:
		return r.first(ctx, []string{path.Join(r.embeddedRoot, res.Filename+"_1.mp4")})
	case ClassVideoOriginal:
		if t.Prefs != nil && t.Prefs.TranscodeVideos {
			r.log.Debug().
				Str("image_hash", res.Identifier).
				Msg("transcoding unavailable, serving original")
		}
		return r.original(ctx, t.Photo)
	case ClassPhotoOriginal:
		return r.original(ctx, t.Photo)
	case ClassDerived:
		return r.first(ctx, []string{path.Join(r.mediaRoot, res.Category, res.Filename)})
	}
	return "", errNoVariant
}

// ZipPath is where a packaged download for userID lives. The owner id is
// part of the stored name so one user cannot guess another's archive.
func (r *FileResolver) ZipPath(filename string, userID int64) string {
	return path.Join(r.zipRoot, filename+strconv.FormatInt(userID, 10))
}

func (r *FileResolver) thumbnailCandidates(t Target) []string {
	base := path.Join(r.mediaRoot, t.Resource.Category, t.Resource.Filename)
	candidates := []string{base}
	if !strings.HasSuffix(t.Resource.Filename, ".webp") {
		candidates = append(candidates, base+".webp")
	}
	if !strings.HasSuffix(t.Resource.Filename, ".mp4") {
		candidates = append(candidates, base+".mp4")
	}
	if t.Photo != nil && t.Photo.LegacyThumbnailPath != nil && *t.Photo.LegacyThumbnailPath != "" {
		candidates = append(candidates, r.underMediaRoot(*t.Photo.LegacyThumbnailPath))
	}
	return candidates
}

func (r *FileResolver) underMediaRoot(p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(r.mediaRoot, p)
}

func (r *FileResolver) original(ctx context.Context, photo *models.Photo) (string, error) {
	if photo == nil || photo.OriginalPath == "" {
		return "", errNoVariant
	}
	return r.first(ctx, []string{path.Clean(photo.OriginalPath)})
}

// first returns the first candidate that exists. Probe errors other than
// absence are logged and treated as absence.
func (r *FileResolver) first(ctx context.Context, candidates []string) (string, error) {
	for _, candidate := range candidates {
		_, err := r.store.Stat(ctx, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, storage.ErrNotExist) {
			r.log.Warn().Err(err).Str("path", candidate).Msg("probe failed")
		}
	}
	return "", errNoVariant
}
