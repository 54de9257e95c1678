package sniffer

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
)

var ErrUnknownType = errors.New("unknown image type")

const HeadSize = 512

type Result struct {
	MIME string
	Ext  string
}

func (r Result) IsSVG() bool {
	return r.MIME == "image/svg+xml"
}

// DetectHead identifies an image from its first bytes. Only the formats the
// dashboard can render are recognised.
func DetectHead(head []byte) (Result, error) {
	switch {
	case len(head) == 0:
		return Result{}, ErrUnknownType
	case hasPrefix(head, 0xff, 0xd8, 0xff):
		return Result{MIME: "image/jpeg", Ext: "jpg"}, nil
	case hasPrefix(head, 0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'):
		return Result{MIME: "image/png", Ext: "png"}, nil
	case bytes.HasPrefix(head, []byte("GIF87a")), bytes.HasPrefix(head, []byte("GIF89a")):
		return Result{MIME: "image/gif", Ext: "gif"}, nil
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return Result{MIME: "image/webp", Ext: "webp"}, nil
	case len(head) >= 12 && string(head[4:8]) == "ftyp" && bytes.Contains(head[8:], []byte("avif")):
		return Result{MIME: "image/avif", Ext: "avif"}, nil
	case isSVG(head):
		return Result{MIME: "image/svg+xml", Ext: "svg"}, nil
	}
	return Result{}, ErrUnknownType
}

func hasPrefix(head []byte, magic ...byte) bool {
	return bytes.HasPrefix(head, magic)
}

func isSVG(head []byte) bool {
	trimmed := strings.ToLower(strings.TrimSpace(string(head)))
	if strings.HasPrefix(trimmed, "<svg") {
		return true
	}
	return strings.HasPrefix(trimmed, "<?xml") && strings.Contains(trimmed, "<svg")
}

// DeclaredType returns the media type of a Content-Type header without
// parameters.
func DeclaredType(header http.Header) string {
	contentType := header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
