package gateway

import (
	"photovault/internal/models"
	"photovault/internal/security"
)

type Decision int

const (
	Allow Decision = iota
	// DenyForbidden means the request carried no usable identity.
	DenyForbidden
	// DenyNotFound means the identity has no relation to the photo.
	DenyNotFound
)

func (d Decision) Allowed() bool { return d == Allow }

// Authorize decides whether p may read photo. First match wins: public flag,
// missing identity, ownership, direct share, album share.
func Authorize(p security.Principal, photo models.Photo) Decision {
	if photo.Public {
		return Allow
	}
	if !p.IsIdentified() {
		return DenyForbidden
	}
	if p.UserID == photo.OwnerID {
		return Allow
	}
	if photo.SharedWith(p.UserID) {
		return Allow
	}
	for _, album := range photo.Albums {
		if album.SharedWith(p.UserID) {
			return Allow
		}
	}
	return DenyNotFound
}
