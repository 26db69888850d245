package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"photovault/internal/media"
	"photovault/internal/models"
	"photovault/internal/repository"
	"photovault/internal/security"
	"photovault/internal/storage"
)

// Repository is the read side of the photo library the gateway consults.
// Implementations return repository.ErrPhotoNotFound / ErrUserNotFound.
type Repository interface {
	FindPhotoByHash(ctx context.Context, hash string) (models.Photo, error)
	FindUserByID(ctx context.Context, id int64) (models.User, error)
}

type Request struct {
	Category string
	Filename string
	Token    string
}

type Result struct {
	Resource    Resource
	Principal   security.Principal
	Path        string
	ContentType string
}

type Gateway struct {
	auth  *security.Authenticator
	repo  Repository
	files *FileResolver
	types *media.ContentTypeResolver
	store storage.Store
	now   func() time.Time
	log   zerolog.Logger
}

type Option func(*Gateway)

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func New(
	auth *security.Authenticator,
	repo Repository,
	files *FileResolver,
	types *media.ContentTypeResolver,
	store storage.Store,
	log zerolog.Logger,
	opts ...Option,
) *Gateway {
	g := &Gateway{
		auth:  auth,
		repo:  repo,
		files: files,
		types: types,
		store: store,
		now:   time.Now,
		log:   log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Resolve runs classification, authentication, authorization, file
// resolution and content typing for one request. Every failure is a *Error.
// The decision is final once Resolve returns; Open does not re-check it.
func (g *Gateway) Resolve(ctx context.Context, req Request) (Result, error) {
	res, err := Classify(req.Category, req.Filename)
	if err != nil {
		return Result{}, fail(KindClassification, 0, err)
	}

	var result Result
	switch {
	case res.Class.BacksPhoto():
		result, err = g.resolvePhoto(ctx, res, req.Token)
	case res.Class.RequiresIdentity():
		result, err = g.resolvePrivate(ctx, res, req.Token)
	default:
		err = fail(KindClassification, res.Class, ErrUnrecognized)
	}
	if err != nil {
		g.log.Debug().
			Str("class", res.Class.String()).
			Str("category", res.Category).
			Str("outcome", KindOf(err).String()).
			Msg("media request refused")
		return Result{}, err
	}

	result.ContentType = g.types.Resolve(ctx, result.Path)
	return result, nil
}

// resolvePrivate handles classes that are only ever served to a valid token
// holder: zip, avatars and faces.
func (g *Gateway) resolvePrivate(ctx context.Context, res Resource, token string) (Result, error) {
	principal, err := g.auth.Authenticate(token, g.now())
	if err != nil || !principal.IsIdentified() {
		return Result{}, fail(KindAuthentication, res.Class, errNoIdentity)
	}

	if res.Class == ClassAvatar {
		if _, err := g.repo.FindUserByID(ctx, principal.UserID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return Result{}, fail(KindResourceAbsent, res.Class, err)
			}
			return Result{}, fail(KindInternal, res.Class, fmt.Errorf("find user: %w", err))
		}
	}

	p, err := g.files.Resolve(ctx, Target{Resource: res, UserID: principal.UserID})
	if err != nil {
		return Result{}, fail(KindResourceAbsent, res.Class, err)
	}
	return Result{Resource: res, Principal: principal, Path: p}, nil
}

func (g *Gateway) resolvePhoto(ctx context.Context, res Resource, token string) (Result, error) {
	photo, err := g.repo.FindPhotoByHash(ctx, res.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return Result{}, fail(KindResourceAbsent, res.Class, errMissingPhoto)
		}
		return Result{}, fail(KindInternal, res.Class, fmt.Errorf("find photo: %w", err))
	}

	principal := security.Anonymous()
	if !photo.Public {
		principal, err = g.auth.Authenticate(token, g.now())
		if err != nil && res.Class == ClassEmbeddedMedia {
			// embedded media falls back to anonymous visibility
			principal = security.Anonymous()
		}
	}

	decision := Authorize(principal, photo)
	if res.Class == ClassEmbeddedMedia {
		if !decision.Allowed() {
			return Result{}, fail(KindResourceAbsent, res.Class, errDenied)
		}
		if photo.EmbeddedMediaCount < 1 {
			return Result{}, fail(KindResourceAbsent, res.Class, errNoEmbedded)
		}
	}
	switch decision {
	case DenyForbidden:
		return Result{}, fail(KindAuthentication, res.Class, errNoIdentity)
	case DenyNotFound:
		return Result{}, fail(KindAuthorizationDenied, res.Class, errDenied)
	}

	if res.Class == ClassPhotoOriginal && photo.IsVideo {
		res.Class = ClassVideoOriginal
	}

	target := Target{Resource: res, UserID: principal.UserID, Photo: &photo}
	if res.Class == ClassVideoOriginal && principal.IsIdentified() {
		target.Prefs = g.preferences(ctx, principal.UserID)
	}

	p, err := g.files.Resolve(ctx, target)
	if err != nil {
		return Result{}, fail(KindResourceAbsent, res.Class, err)
	}
	return Result{Resource: res, Principal: principal, Path: p}, nil
}

// preferences is best effort; a failed lookup only means defaults apply.
func (g *Gateway) preferences(ctx context.Context, userID int64) *models.User {
	user, err := g.repo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			g.log.Warn().Err(err).Int64("user_id", userID).Msg("load user preferences failed")
		}
		return nil
	}
	return &user
}

// ZipArtifact authorizes removal of a packaged download and returns the
// stored path. It does not probe storage; the file may already be gone.
func (g *Gateway) ZipArtifact(ctx context.Context, filename, token string) (string, security.Principal, error) {
	res, err := Classify("zip", filename)
	if err != nil {
		return "", security.Principal{}, fail(KindClassification, ClassZip, err)
	}
	principal, err := g.auth.Authenticate(token, g.now())
	if err != nil || !principal.IsIdentified() {
		return "", security.Principal{}, fail(KindAuthentication, ClassZip, errNoIdentity)
	}
	return g.files.ZipPath(res.Filename, principal.UserID), principal, nil
}

// Open fetches the resolved file for streaming. Any failure here happened
// after a positive decision and is reported as TransientIO.
func (g *Gateway) Open(ctx context.Context, result Result) (storage.Object, storage.ObjectInfo, error) {
	obj, info, err := g.store.Open(ctx, result.Path)
	if err != nil {
		return nil, storage.ObjectInfo{}, fail(KindTransientIO, result.Resource.Class, err)
	}
	return obj, info, nil
}
