package transport

import (
	"context"
	"net/http"

	"github.com/brendan.keane/oauthhttp/internal/buffer"
	"github.com/brendan.keane/oauthhttp/internal/command"
)

// Transport performs one HTTP exchange per call and returns the raw response
// body. Both backends return the same buffer and error shapes.
type Transport interface {
	// Get requests url, with query appended after a '?' when it is not empty
	Get(ctx context.Context, url, query string) (*buffer.Buffer, error)

	// Post sends body as a form-encoded POST to url
	Post(ctx context.Context, url, body string) (*buffer.Buffer, error)

	// PostFile uploads the raw contents of path. A zero length is taken from
	// the file size. contentType is a full "Name: value" header line, a bare
	// content type, or empty for the image/jpeg default.
	PostFile(ctx context.Context, url, path string, length int64, contentType string) (*buffer.Buffer, error)

	// Backend names the backend serving requests
	Backend() string
}

// HTTPClientProvider defines interface for the underlying HTTP client
// Enables testing with mock HTTP clients
type HTTPClientProvider interface {
	Do(req *http.Request) (*http.Response, error)
}

// TemplateResolver yields the command template for a request kind
type TemplateResolver interface {
	Resolve(kind command.Kind) (*command.Template, error)
}

// CommandRunner executes a formatted command and captures its output
type CommandRunner interface {
	Run(ctx context.Context, cmd *command.Command) (*buffer.Buffer, error)
}

// RequestSigner signs a fully built request before it is sent
type RequestSigner interface {
	Sign(ctx context.Context, req *http.Request) error
}
