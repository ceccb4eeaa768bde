package submission

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/cardscan/internal/detection"
	"github.com/JaimeStill/cardscan/internal/intake"
)

var (
	ErrNoFile            = errors.New("no file selected")
	ErrInFlight          = errors.New("a detection is already in progress")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrClosed            = errors.New("controller closed")
)

// MapHTTPStatus maps submission, intake and detection errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrInFlight), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, intake.ErrTooLarge),
		errors.Is(err, intake.ErrNotAnImage),
		errors.Is(err, intake.ErrSuperseded),
		errors.Is(err, intake.ErrNoUpload):
		return intake.MapHTTPStatus(err)
	}
	return detection.MapHTTPStatus(err)
}
