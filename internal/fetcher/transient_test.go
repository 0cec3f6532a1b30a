package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"503", &StatusError{URL: "u", StatusCode: http.StatusServiceUnavailable}, true},
		{"429 wrapped", fmt.Errorf("download: %w", &StatusError{URL: "u", StatusCode: http.StatusTooManyRequests}), true},
		{"404", &StatusError{URL: "u", StatusCode: http.StatusNotFound}, false},
		{"timeout", timeoutErr{}, true},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"refused message", errors.New("dial tcp: connection refused"), true},
		{"dns", errors.New("lookup datos.example.cl: no such host"), true},
		{"cancelled", context.Canceled, false},
		{"plain", errors.New("unsupported protocol scheme"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestStatusError_Message(t *testing.T) {
	err := &StatusError{URL: "https://datos.example.cl/q.csv", StatusCode: 502}
	assert.Equal(t, "http 502 from https://datos.example.cl/q.csv", err.Error())
	assert.True(t, err.Transient())
}
