package gateway

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		category   string
		filename   string
		wantClass  ResourceClass
		wantIdent  string
	}{
		{"thumbnail big", "thumbnails_big", "abc123", ClassThumbnail, "abc123"},
		{"thumbnail with suffix", "square_thumbnails", "abc123_2.webp", ClassThumbnail, "abc123"},
		{"thumbnail keyword", "thumbnail", "h2", ClassThumbnail, "h2"},
		{"faces", "faces", "face_17.jpg", ClassFace, "face_17.jpg"},
		{"zip", "zip", "download-2f1c", ClassZip, "download-2f1c"},
		{"avatars", "avatars", "me.png", ClassAvatar, "me.png"},
		{"embedded", "embedded_media", "abc123", ClassEmbeddedMedia, "abc123"},
		{"photos", "photos", "abc123.jpg", ClassPhotoOriginal, "abc123"},
		{"photos with user suffix", "photos", "abc123_7.jpg", ClassPhotoOriginal, "abc123"},
		{"videos", "videos", "abc123.mp4", ClassVideoOriginal, "abc123"},
		{"derived", "medium", "abc123.jpg", ClassDerived, "abc123"},
		{"nested derived", "previews/large", "abc123_x.webp", ClassDerived, "abc123"},
		{"case insensitive", "ZIP", "x", ClassZip, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.category, tt.filename)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got.Class != tt.wantClass {
				t.Errorf("Classify() class = %v, want %v", got.Class, tt.wantClass)
			}
			if got.Identifier != tt.wantIdent {
				t.Errorf("Classify() identifier = %q, want %q", got.Identifier, tt.wantIdent)
			}
			if got.Filename != tt.filename || got.Category != tt.category {
				t.Errorf("Classify() kept %q/%q, want %q/%q", got.Category, got.Filename, tt.category, tt.filename)
			}
		})
	}
}

func TestClassify_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		category string
		filename string
	}{
		{"empty category", "", "abc.jpg"},
		{"empty filename", "photos", ""},
		{"dot dot filename", "faces", ".."},
		{"traversal category", "../etc", "passwd"},
		{"traversal inside category", "thumbnails_big/../../etc", "passwd"},
		{"empty segment", "a//b", "x.jpg"},
		{"backslash", "faces", "..\\secret"},
		{"nul byte", "faces", "a\x00.jpg"},
		{"no hash before dot", "photos", ".jpg"},
		{"no hash before underscore", "thumbnails_big", "_small.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Classify(tt.category, tt.filename); !errors.Is(err, ErrUnrecognized) {
				t.Errorf("Classify(%q, %q) error = %v, want ErrUnrecognized", tt.category, tt.filename, err)
			}
		})
	}
}

func TestResourceClassPolicies(t *testing.T) {
	for _, c := range []ResourceClass{ClassZip, ClassAvatar} {
		if c.HidesExistence() {
			t.Errorf("%v should not hide existence", c)
		}
		if !c.RequiresIdentity() {
			t.Errorf("%v should require identity", c)
		}
	}
	for _, c := range []ResourceClass{ClassThumbnail, ClassPhotoOriginal, ClassVideoOriginal, ClassEmbeddedMedia, ClassDerived} {
		if !c.HidesExistence() {
			t.Errorf("%v should hide existence", c)
		}
		if !c.BacksPhoto() {
			t.Errorf("%v should be photo backed", c)
		}
	}
}
