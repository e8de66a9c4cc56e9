package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileKind groups the MIME types an upload endpoint may accept.
type FileKind string

const (
	KindImage    FileKind = "image"
	KindDocument FileKind = "document"
	KindVideo    FileKind = "video"
	KindArchive  FileKind = "archive"
	KindCode     FileKind = "code"
)

var (
	ErrFileTypeRejected = errors.New("file type not allowed")
	ErrFileTooLarge     = errors.New("file too large")
	ErrEmptyFile        = errors.New("file is empty")
)

var kindMIMETypes = map[FileKind][]string{
	KindImage: {"image/jpeg", "image/png", "image/gif", "image/webp"},
	KindDocument: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	},
	KindVideo:   {"video/mp4", "video/webm", "video/quicktime"},
	KindArchive: {"application/zip", "application/x-rar-compressed"},
	KindCode: {
		"text/plain",
		"application/json",
		"text/html",
		"text/css",
		"text/javascript",
		"application/javascript",
		"text/x-python",
	},
}

// resource kinds are tried in this order so a more specific match wins
var kindOrder = []FileKind{KindImage, KindVideo, KindDocument, KindArchive, KindCode}

// Classify detects the content type of data and returns the first allowed kind it belongs to.
func Classify(data []byte, allowed ...FileKind) (FileKind, *mimetype.MIME, error) {
	if len(data) == 0 {
		return "", nil, ErrEmptyFile
	}

	detected := mimetype.Detect(data)
	for _, kind := range kindOrder {
		if !containsKind(allowed, kind) {
			continue
		}
		for _, m := range kindMIMETypes[kind] {
			if detected.Is(m) {
				return kind, detected, nil
			}
		}
	}

	return "", detected, fmt.Errorf("%w: %s, accepted: %s", ErrFileTypeRejected, detected.String(), joinKinds(allowed))
}

func containsKind(kinds []FileKind, kind FileKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func joinKinds(kinds []FileKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
