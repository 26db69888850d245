package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindClassification Kind = iota + 1
	KindAuthentication
	KindAuthorizationDenied
	KindResourceAbsent
	KindTransientIO
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindClassification:
		return "classification"
	case KindAuthentication:
		return "authentication"
	case KindAuthorizationDenied:
		return "authorization_denied"
	case KindResourceAbsent:
		return "resource_absent"
	case KindTransientIO:
		return "transient_io"
	case KindInternal:
		return "internal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Error struct {
	Kind  Kind
	Class ResourceClass
	Err   error
}

func (e *Error) Error() string {
	if e.Class == 0 {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Class, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	errDenied       = errors.New("access denied")
	errNoIdentity   = errors.New("valid token required")
	errNoVariant    = errors.New("no stored variant")
	errNoEmbedded   = errors.New("photo has no embedded media")
	errMissingPhoto = errors.New("photo not found")
)

func fail(kind Kind, class ResourceClass, err error) *Error {
	return &Error{Kind: kind, Class: class, Err: err}
}

// KindOf returns the taxonomy kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a gateway error onto the status shown to clients. Denials
// on photo-backed classes are reported as 404 so they cannot be told apart
// from absent media; zip and avatar denials are 403.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var gwErr *Error
	if !errors.As(err, &gwErr) {
		return http.StatusInternalServerError
	}

	switch gwErr.Kind {
	case KindClassification, KindResourceAbsent:
		return http.StatusNotFound
	case KindAuthentication:
		return http.StatusForbidden
	case KindAuthorizationDenied:
		if gwErr.Class.HidesExistence() {
			return http.StatusNotFound
		}
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}
