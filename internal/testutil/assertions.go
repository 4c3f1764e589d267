package testutil

import (
	"net/http"
	"strings"
	"testing"

	"github.com/brendan.keane/oauthhttp/internal/buffer"
	"github.com/brendan.keane/oauthhttp/internal/errors"
)

// AssertBuffer checks the buffer content and its trailing NUL terminator
func AssertBuffer(t *testing.T, buf *buffer.Buffer, expected string) {
	t.Helper()

	if buf == nil {
		t.Fatalf("expected buffer %q, got nil", expected)
	}
	if got := buf.String(); got != expected {
		t.Errorf("buffer content = %q, want %q", got, expected)
	}
	if buf.Len() != len(expected) {
		t.Errorf("buffer length = %d, want %d", buf.Len(), len(expected))
	}
	term := buf.Terminated()
	if len(term) != buf.Len()+1 || term[buf.Len()] != 0 {
		t.Errorf("buffer is not NUL terminated")
	}
}

// AssertErrorType checks that err carries the given error type
func AssertErrorType(t *testing.T, err error, expected errors.ErrorType) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", expected)
	}
	if !errors.IsType(err, expected) {
		t.Errorf("expected error type %s, got %s (%v)", expected, errors.GetType(err), err)
	}
}

// AssertStringContains checks if a string contains a substring
func AssertStringContains(t *testing.T, str, substring string, msg string) {
	t.Helper()
	if !strings.Contains(str, substring) {
		t.Errorf("%s: expected %q to contain %q", msg, str, substring)
	}
}

// AssertHeaderSet checks if a header is set to the expected value
func AssertHeaderSet(t *testing.T, req *http.Request, header, expectedValue string, msg string) {
	t.Helper()
	if got := req.Header.Get(header); got != expectedValue {
		t.Errorf("%s: expected header %s=%q, got %q", msg, header, expectedValue, got)
	}
}

// AssertHeaderNotSet checks that a header is not set
func AssertHeaderNotSet(t *testing.T, req *http.Request, header string, msg string) {
	t.Helper()
	if got := req.Header.Get(header); got != "" {
		t.Errorf("%s: expected header %s to be unset, got %q", msg, header, got)
	}
}
