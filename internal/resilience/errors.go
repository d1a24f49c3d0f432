package resilience

import (
	"errors"
	"net"
	"net/http"
	"strings"
)

// TransientError marks a provider failure that is safe to retry, such as a
// 429, a 5xx or a network timeout.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable. statusCode is 0 for non-HTTP failures.
func Transient(err error, statusCode int) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err, StatusCode: statusCode}
}

var transientMessages = []string{
	"connection reset by peer",
	"connection refused",
	"broken pipe",
	"i/o timeout",
	"tls handshake timeout",
	"no such host",
	"server closed idle connection",
}

// IsTransient reports whether err (or anything it wraps) is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsTransientStatus reports whether an HTTP status code is a server-side or
// throttling failure that a later attempt may not hit.
func IsTransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
