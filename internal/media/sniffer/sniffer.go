package sniffer

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeAVIF MediaType = "avif"
	TypeHEIC MediaType = "heic"
	TypeMP4  MediaType = "mp4"
	TypeMOV  MediaType = "mov"
	TypeSVG  MediaType = "svg"
)

// HeadSize is how many leading bytes Detect inspects.
const HeadSize = 3072

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, HeadSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

// DetectHead checks the signatures photos and videos are usually stored in
// first and defers anything else to mimetype's signature tree.
func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	}
	if isGIF(head) {
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	}
	if isWEBP(head) {
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	}
	if brand, ok := ftypBrand(head); ok {
		switch brand {
		case "avif", "avis":
			return Result{Type: TypeAVIF, MIME: "image/avif"}, nil
		case "heic", "heix", "hevc", "heim", "heis", "mif1", "msf1":
			return Result{Type: TypeHEIC, MIME: "image/heic"}, nil
		case "qt  ":
			return Result{Type: TypeMOV, MIME: "video/quicktime"}, nil
		case "isom", "iso2", "iso4", "iso5", "iso6", "mp41", "mp42", "avc1", "M4V ", "dash", "MSNV":
			return Result{Type: TypeMP4, MIME: "video/mp4"}, nil
		}
	}
	if isSVG(head) {
		return Result{Type: TypeSVG, MIME: "image/svg+xml"}, nil
	}

	return fallback(head)
}

func fallback(head []byte) (Result, error) {
	mt := mimetype.Detect(head)
	if mt == nil || mt.Is("application/octet-stream") {
		return Result{}, ErrUnknownType
	}
	mime, _, _ := strings.Cut(mt.String(), ";")
	return Result{
		Type: MediaType(strings.TrimPrefix(mt.Extension(), ".")),
		MIME: mime,
	}, nil
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

// ftypBrand returns the major brand of an ISO base media file.
func ftypBrand(head []byte) (string, bool) {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return "", false
	}
	return string(head[8:12]), true
}

func isSVG(head []byte) bool {
	trimmed := strings.TrimSpace(string(head))
	return strings.HasPrefix(trimmed, "<svg") ||
		(strings.HasPrefix(trimmed, "<?xml") && strings.Contains(trimmed, "<svg"))
}
