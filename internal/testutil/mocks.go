package testutil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/brendan.keane/oauthhttp/internal/buffer"
	"github.com/brendan.keane/oauthhttp/internal/command"
)

// MockHTTPClient provides a unified mock HTTP client implementation
type MockHTTPClient struct {
	Response *http.Response
	Error    error
	Requests []*http.Request // Track all requests made
	Bodies   []string        // Request bodies, read before the response is returned
}

// Do implements the HTTPClientProvider interface
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)

	body := ""
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}
	m.Bodies = append(m.Bodies, body)

	return m.Response, m.Error
}

// LastRequest returns the most recent request, or nil
func (m *MockHTTPClient) LastRequest() *http.Request {
	if len(m.Requests) == 0 {
		return nil
	}
	return m.Requests[len(m.Requests)-1]
}

// NewMockHTTPClient creates a mock HTTP client with the given response and error
func NewMockHTTPClient(body string, statusCode int, headers map[string]string, err error) *MockHTTPClient {
	var resp *http.Response
	if err == nil {
		resp = &http.Response{
			StatusCode: statusCode,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}

		for key, value := range headers {
			resp.Header.Set(key, value)
		}
	}

	return &MockHTTPClient{
		Response: resp,
		Error:    err,
		Requests: make([]*http.Request, 0),
	}
}

// MockRunner records formatted commands instead of executing them
type MockRunner struct {
	mu       sync.Mutex
	Output   string
	Error    error
	Commands [][]string
}

// Run implements the CommandRunner interface
func (m *MockRunner) Run(ctx context.Context, cmd *command.Command) (*buffer.Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, append([]string(nil), cmd.Args...))
	if m.Error != nil {
		return nil, m.Error
	}
	return buffer.FromBytes([]byte(m.Output)), nil
}

// LastCommand returns the argv of the most recent command, or nil
func (m *MockRunner) LastCommand() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Commands) == 0 {
		return nil
	}
	return m.Commands[len(m.Commands)-1]
}

// NewMockRunner creates a runner that returns output for every command
func NewMockRunner(output string, err error) *MockRunner {
	return &MockRunner{Output: output, Error: err}
}

// MockResolver returns fixed templates per kind
type MockResolver struct {
	Templates map[command.Kind]*command.Template
	Error     error
	Calls     []command.Kind
}

// Resolve implements the TemplateResolver interface
func (m *MockResolver) Resolve(kind command.Kind) (*command.Template, error) {
	m.Calls = append(m.Calls, kind)
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Templates[kind], nil
}

// NewMockResolver parses the given raw templates. It panics on invalid
// templates since they are test fixtures.
func NewMockResolver(get, post string) *MockResolver {
	templates := make(map[command.Kind]*command.Template)
	for kind, raw := range map[command.Kind]string{command.KindGET: get, command.KindPOST: post} {
		tpl, err := command.Parse(kind, raw)
		if err != nil {
			panic(err)
		}
		templates[kind] = tpl
	}
	return &MockResolver{Templates: templates}
}

// MockSigner records Sign calls and optionally sets a header
type MockSigner struct {
	Header string
	Value  string
	Error  error
	Calls  int
}

// Sign implements the RequestSigner interface
func (m *MockSigner) Sign(ctx context.Context, req *http.Request) error {
	m.Calls++
	if m.Error != nil {
		return m.Error
	}
	if m.Header != "" {
		req.Header.Set(m.Header, m.Value)
	}
	return nil
}
