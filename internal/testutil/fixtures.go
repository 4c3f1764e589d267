// Package testutil provides shared testing utilities and fixtures
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Command templates used across test files. They run without a network.
const (
	// EchoGetTemplate prints the GET URL
	EchoGetTemplate = "echo %u"

	// EchoPostTemplate prints the body before the URL
	EchoPostTemplate = "echo %p %u"
)

// JPEGHeader is the start of a JPEG file, used as upload content
var JPEGHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// WriteTempFile writes content to a file in a per-test directory and returns its path
func WriteTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
