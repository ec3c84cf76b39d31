package controller

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is an image payload offered by the selection surface. Content is
// read lazily by the remote calls, the way a browser File is.
type File struct {
	Name      string
	Path      string
	MediaType string
	Size      int64

	open func() (io.ReadCloser, error)
}

// FromPath resolves a filesystem path into a File. The declared media type
// comes from the extension, falling back to content sniffing when the
// extension is unknown.
func FromPath(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, NewValidationError("", "", "empty file path")
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, NewValidationErrorWithCause(filepath.Base(cleanPath), "cannot access file", err)
	}
	if info.IsDir() {
		return nil, NewValidationError(filepath.Base(cleanPath), "", "is a directory, not an image file")
	}

	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(cleanPath)))
	if mediaType == "" {
		detected, err := mimetype.DetectFile(cleanPath)
		if err != nil {
			return nil, NewValidationErrorWithCause(filepath.Base(cleanPath), "cannot read file", err)
		}
		mediaType = detected.String()
	}

	return &File{
		Name:      filepath.Base(cleanPath),
		Path:      cleanPath,
		MediaType: baseMediaType(mediaType),
		Size:      info.Size(),
		open: func() (io.ReadCloser, error) {
			// #nosec G304 - path was chosen by the user through the selection surface
			return os.Open(cleanPath)
		},
	}, nil
}

// FromBytes wraps an in-memory payload.
func FromBytes(name, mediaType string, data []byte) *File {
	return &File{
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// Open returns a reader over the file content.
func (f *File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %q has no content", f.Name)
	}
	return f.open()
}

// IsImageMediaType reports whether a media type matches image/*.
func IsImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(baseMediaType(mediaType)), "image/")
}

// baseMediaType strips parameters such as "; charset=utf-8".
func baseMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		return parsed
	}
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		return strings.TrimSpace(mediaType[:i])
	}
	return mediaType
}
