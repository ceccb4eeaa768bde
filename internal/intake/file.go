package intake

import (
	"encoding/base64"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// File is a candidate image: its bytes plus the media type declared by
// whoever supplied it.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the byte size of the file content.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// Preview is a displayable in-memory representation of the selected file.
type Preview struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	DataURI     string    `json:"data_uri"`

	generation uint64
}

// DetectContentType returns a declared media type for callers that have none,
// preferring the file extension and falling back to content sniffing.
func DetectContentType(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			mediaType, _, err := mime.ParseMediaType(t)
			if err == nil {
				return mediaType
			}
		}
	}
	detected := mimetype.Detect(data).String()
	if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
		return mediaType
	}
	return detected
}

// NormalizeContentType replaces a missing or generic declared type with a
// detected one and strips parameters.
func NormalizeContentType(declared, name string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared == "" || declared == "application/octet-stream" {
		return DetectContentType(name, data)
	}
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		return mediaType
	}
	return declared
}

func dataURI(f File) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(f.ContentType) + base64.StdEncoding.EncodedLen(len(f.Data)))
	b.WriteString("data:")
	b.WriteString(f.ContentType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(f.Data))
	return b.String()
}
