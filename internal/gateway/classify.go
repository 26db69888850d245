package gateway

import (
	"errors"
	"strings"
)

var ErrUnrecognized = errors.New("unrecognized media path")

// Resource is a classified request path.
type Resource struct {
	Class    ResourceClass
	Category string
	Filename string
	// Identifier is the photo hash for photo-backed classes and the raw
	// filename otherwise.
	Identifier string
}

var thumbnailCategories = map[string]struct{}{
	"thumbnail":               {},
	"thumbnails":              {},
	"thumbnails_big":          {},
	"square_thumbnails":       {},
	"square_thumbnails_small": {},
}

func Classify(category, filename string) (Resource, error) {
	if !safeCategory(category) || !safeSegment(filename) {
		return Resource{}, ErrUnrecognized
	}

	res := Resource{Category: category, Filename: filename, Identifier: filename}

	switch lower := strings.ToLower(category); {
	case lower == "zip":
		res.Class = ClassZip
	case lower == "avatars":
		res.Class = ClassAvatar
	case lower == "faces":
		res.Class = ClassFace
	case lower == "embedded_media":
		res.Class = ClassEmbeddedMedia
	case lower == "photos":
		res.Class = ClassPhotoOriginal
		res.Identifier = hashPrefix(filename)
	case lower == "videos":
		res.Class = ClassVideoOriginal
		res.Identifier = hashPrefix(filename)
	default:
		if _, ok := thumbnailCategories[lower]; ok {
			res.Class = ClassThumbnail
		} else {
			res.Class = ClassDerived
		}
		res.Identifier = hashPrefix(filename)
	}

	if res.Identifier == "" {
		return Resource{}, ErrUnrecognized
	}
	return res, nil
}

// hashPrefix is the text before the first '.' and then before the first '_'.
func hashPrefix(filename string) string {
	name, _, _ := strings.Cut(filename, ".")
	name, _, _ = strings.Cut(name, "_")
	return name
}

func safeCategory(category string) bool {
	if category == "" {
		return false
	}
	for _, segment := range strings.Split(category, "/") {
		if !safeSegment(segment) {
			return false
		}
	}
	return true
}

func safeSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}
