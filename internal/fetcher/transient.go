package fetcher

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
)

// StatusError is returned for a response whose status made the download
// fail. Retryable statuses are marked transient.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return "http " + strconv.Itoa(e.StatusCode) + " from " + e.URL
}

// Transient reports whether repeating the request may succeed.
func (e *StatusError) Transient() bool {
	return isTransientStatus(e.StatusCode)
}

// isTransientStatus reports whether the status signals a temporary
// server-side condition.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// transientPatterns match wrapped transport errors that lost their type.
var transientPatterns = []string{
	"connection reset",
	"connection refused",
	"broken pipe",
	"no such host",
	"temporary failure in name resolution",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
	"unexpected eof",
}

// IsTransient reports whether err is worth retrying: a transient
// StatusError, a network timeout, a reset or refused connection, or a
// transport failure recognised by message.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
