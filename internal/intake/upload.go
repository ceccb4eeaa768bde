package intake

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// FormField is the multipart field that carries the selected file.
const FormField = "file"

// multipart framing and headers ride on top of the file bytes
const uploadOverhead = 1 << 20

// ReadUpload reads the FormField file from a multipart request. Bodies
// larger than maxSize plus framing fail with ErrTooLarge before they are
// buffered; the intake still enforces the exact limit on the file itself.
func ReadUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+uploadOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return File{}, fmt.Errorf("%w: body exceeds %d bytes", ErrTooLarge, tooBig.Limit)
		}
		return File{}, fmt.Errorf("%w: %v", ErrNoUpload, err)
	}

	part, header, err := r.FormFile(FormField)
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrNoUpload, err)
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return File{}, fmt.Errorf("read upload: %w", err)
	}

	return File{
		Name:        header.Filename,
		ContentType: NormalizeContentType(header.Header.Get("Content-Type"), header.Filename, data),
		Data:        data,
	}, nil
}
