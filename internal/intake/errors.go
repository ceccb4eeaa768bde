package intake

import (
	"errors"
	"net/http"
)

// Validation and lifecycle errors for file intake.
var (
	ErrTooLarge   = errors.New("file exceeds maximum size")
	ErrNotAnImage = errors.New("file is not an image")
	ErrSuperseded = errors.New("preview superseded by a newer selection")
	ErrNoUpload   = errors.New("request carries no file upload")
)

// MapHTTPStatus maps intake errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrNotAnImage) {
		return http.StatusUnsupportedMediaType
	}
	if errors.Is(err, ErrNoUpload) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrSuperseded) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
