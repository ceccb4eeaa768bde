package detection

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericFailure is shown when the service gives no usable error message.
const GenericFailure = "Detection failed"

var (
	ErrTransport         = errors.New("detection service unreachable")
	ErrMalformedResponse = errors.New("malformed detection response")
	ErrUnhealthy         = errors.New("detection service unhealthy")
)

// ServerError is a non-success response from the detection service.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("detection service returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("detection service returned %d: %s", e.Status, e.Message)
}

// UserMessage returns the text to show for err: the service's own error
// message when it sent one, fallback otherwise.
func UserMessage(err error, fallback string) string {
	var serr *ServerError
	if errors.As(err, &serr) && serr.Message != "" {
		return serr.Message
	}
	return fallback
}

// MapHTTPStatus maps detection errors to the status a proxying handler returns.
func MapHTTPStatus(err error) int {
	var serr *ServerError
	if errors.As(err, &serr) {
		if serr.Status >= 400 && serr.Status < 500 {
			return serr.Status
		}
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrTransport) || errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrUnhealthy) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
