package gateway

import "fmt"

// ResourceClass is the closed set of media kinds the gateway serves. Adding
// a class means extending every switch over it.
type ResourceClass int

const (
	ClassThumbnail ResourceClass = iota + 1
	ClassFace
	ClassPhotoOriginal
	ClassVideoOriginal
	ClassZip
	ClassAvatar
	ClassEmbeddedMedia
	ClassDerived
)

func (c ResourceClass) String() string {
	switch c {
	case ClassThumbnail:
		return "thumbnail"
	case ClassFace:
		return "faces"
	case ClassPhotoOriginal:
		return "photo-original"
	case ClassVideoOriginal:
		return "video-original"
	case ClassZip:
		return "zip"
	case ClassAvatar:
		return "avatars"
	case ClassEmbeddedMedia:
		return "embedded_media"
	case ClassDerived:
		return "other"
	}
	return fmt.Sprintf("ResourceClass(%d)", int(c))
}

// RequiresIdentity reports whether a valid token is needed no matter what.
func (c ResourceClass) RequiresIdentity() bool {
	switch c {
	case ClassZip, ClassAvatar, ClassFace:
		return true
	}
	return false
}

// BacksPhoto reports whether the class is resolved through a Photo record.
func (c ResourceClass) BacksPhoto() bool {
	switch c {
	case ClassThumbnail, ClassPhotoOriginal, ClassVideoOriginal, ClassEmbeddedMedia, ClassDerived:
		return true
	}
	return false
}

// HidesExistence reports whether a denial must look like a missing file.
// Zip and avatar requests have no shared resource behind them, so they
// answer forbidden instead.
func (c ResourceClass) HidesExistence() bool {
	switch c {
	case ClassZip, ClassAvatar:
		return false
	}
	return true
}
