package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"photovault/internal/media/sniffer"
	"photovault/internal/storage"
)

const DefaultContentType = "application/octet-stream"

var extensionTypes = map[string]string{
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Sniffer guesses a content type from stored bytes.
type Sniffer interface {
	Sniff(ctx context.Context, name string) (string, error)
}

type ContentTypeResolver struct {
	sniffer Sniffer
}

func NewContentTypeResolver(s Sniffer) *ContentTypeResolver {
	return &ContentTypeResolver{sniffer: s}
}

// Resolve never fails: sniffing problems only degrade the advertised type.
func (r *ContentTypeResolver) Resolve(ctx context.Context, name string) string {
	if ct, ok := extensionTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	if r.sniffer == nil {
		return DefaultContentType
	}
	ct, err := r.sniffer.Sniff(ctx, name)
	if err != nil || ct == "" {
		return DefaultContentType
	}
	return ct
}

type StoreSniffer struct {
	store storage.Store
}

func NewStoreSniffer(store storage.Store) *StoreSniffer {
	return &StoreSniffer{store: store}
}

func (s *StoreSniffer) Sniff(ctx context.Context, name string) (string, error) {
	obj, _, err := s.store.Open(ctx, name)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", name, err)
	}
	defer obj.Close()

	result, _, err := sniffer.Detect(obj)
	if err != nil {
		return "", err
	}
	return result.MIME, nil
}
