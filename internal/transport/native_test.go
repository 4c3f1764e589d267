package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/brendan.keane/oauthhttp/internal/config"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/brendan.keane/oauthhttp/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNative(client HTTPClientProvider, signer RequestSigner) Transport {
	return NewNativeTransport(zerolog.Nop(), client, signer, config.NewConfig())
}

func TestNativeTransport_Get(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		query   string
		wantURL string
	}{
		{
			name:    "without query",
			url:     "https://example.com/api",
			wantURL: "https://example.com/api",
		},
		{
			name:    "with query",
			url:     "https://example.com/api",
			query:   "a=1&b=2",
			wantURL: "https://example.com/api?a=1&b=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testutil.NewMockHTTPClient(`{"ok":true}`, http.StatusOK, nil, nil)

			buf, err := newTestNative(client, nil).Get(context.Background(), tt.url, tt.query)
			require.NoError(t, err)

			testutil.AssertBuffer(t, buf, `{"ok":true}`)
			req := client.LastRequest()
			require.NotNil(t, req)
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, tt.wantURL, req.URL.String())
			testutil.AssertHeaderSet(t, req, "User-Agent", config.DefaultUserAgent, "default user agent")
		})
	}
}

func TestNativeTransport_Post(t *testing.T) {
	client := testutil.NewMockHTTPClient("created", http.StatusCreated, nil, nil)

	buf, err := newTestNative(client, nil).Post(context.Background(), "https://example.com/token", "grant_type=client_credentials")
	require.NoError(t, err)

	testutil.AssertBuffer(t, buf, "created")
	req := client.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "grant_type=client_credentials", client.Bodies[0])
	testutil.AssertHeaderSet(t, req, "Content-Type", "application/x-www-form-urlencoded", "form post")
}

func TestNativeTransport_StatusCodeNotInspected(t *testing.T) {
	client := testutil.NewMockHTTPClient(`{"error":"invalid_grant"}`, http.StatusBadRequest, nil, nil)

	buf, err := newTestNative(client, nil).Post(context.Background(), "https://example.com/token", "x=1")
	require.NoError(t, err)
	testutil.AssertBuffer(t, buf, `{"error":"invalid_grant"}`)
}

func TestNativeTransport_EmptyResponse(t *testing.T) {
	client := testutil.NewMockHTTPClient("", http.StatusNoContent, nil, nil)

	buf, err := newTestNative(client, nil).Get(context.Background(), "https://example.com", "")
	require.NoError(t, err)
	testutil.AssertBuffer(t, buf, "")
}

func TestNativeTransport_TransportError(t *testing.T) {
	client := testutil.NewMockHTTPClient("", 0, nil, stderrors.New("connection refused"))

	buf, err := newTestNative(client, nil).Get(context.Background(), "https://example.com", "")
	assert.Nil(t, buf)
	testutil.AssertErrorType(t, err, errors.ErrorTypeTransport)
	assert.ErrorIs(t, err, errors.ErrTransport)
}

func TestNativeTransport_InvalidURL(t *testing.T) {
	client := testutil.NewMockHTTPClient("", http.StatusOK, nil, nil)

	_, err := newTestNative(client, nil).Get(context.Background(), "://bad", "")
	testutil.AssertErrorType(t, err, errors.ErrorTypeTransport)
	assert.Empty(t, client.Requests)
}

func TestNativeTransport_Signer(t *testing.T) {
	t.Run("signature applied", func(t *testing.T) {
		client := testutil.NewMockHTTPClient("ok", http.StatusOK, nil, nil)
		signer := &testutil.MockSigner{Header: "Authorization", Value: "signed"}

		_, err := newTestNative(client, signer).Post(context.Background(), "https://example.com", "a=1")
		require.NoError(t, err)

		assert.Equal(t, 1, signer.Calls)
		testutil.AssertHeaderSet(t, client.LastRequest(), "Authorization", "signed", "signer header")
	})

	t.Run("signing failure stops the request", func(t *testing.T) {
		client := testutil.NewMockHTTPClient("ok", http.StatusOK, nil, nil)
		signer := &testutil.MockSigner{Error: errors.New(errors.ErrorTypeConfig, "AWS region not configured")}

		_, err := newTestNative(client, signer).Get(context.Background(), "https://example.com", "")
		testutil.AssertErrorType(t, err, errors.ErrorTypeTransport)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		assert.Empty(t, client.Requests)
	})
}

func TestNativeTransport_PostFile(t *testing.T) {
	content := append(append([]byte(nil), testutil.JPEGHeader...), []byte("image-data")...)

	tests := []struct {
		name        string
		length      int64
		header      string
		wantBody    []byte
		wantHeaders map[string]string
	}{
		{
			name:        "length from file size",
			wantBody:    content,
			wantHeaders: map[string]string{"Content-Type": DefaultUploadContentType},
		},
		{
			name:        "explicit length truncates",
			length:      4,
			wantBody:    content[:4],
			wantHeaders: map[string]string{"Content-Type": DefaultUploadContentType},
		},
		{
			name:        "bare content type",
			header:      "image/png",
			wantBody:    content,
			wantHeaders: map[string]string{"Content-Type": "image/png"},
		},
		{
			name:        "content type header line",
			header:      "Content-Type: image/gif;",
			wantBody:    content,
			wantHeaders: map[string]string{"Content-Type": "image/gif"},
		},
		{
			name:     "custom header keeps default content type",
			header:   "X-Upload-Name: photo.jpg",
			wantBody: content,
			wantHeaders: map[string]string{
				"X-Upload-Name": "photo.jpg",
				"Content-Type":  DefaultUploadContentType,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteTempFile(t, "upload.jpg", content)
			client := testutil.NewMockHTTPClient("uploaded", http.StatusOK, nil, nil)

			buf, err := newTestNative(client, nil).PostFile(context.Background(), "https://example.com/upload", path, tt.length, tt.header)
			require.NoError(t, err)

			testutil.AssertBuffer(t, buf, "uploaded")
			req := client.LastRequest()
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, int64(len(tt.wantBody)), req.ContentLength)
			assert.Equal(t, string(tt.wantBody), client.Bodies[0])
			for name, value := range tt.wantHeaders {
				testutil.AssertHeaderSet(t, req, name, value, tt.name)
			}
		})
	}
}

func TestNativeTransport_PostFileMissing(t *testing.T) {
	client := testutil.NewMockHTTPClient("", http.StatusOK, nil, nil)
	tr := newTestNative(client, nil)

	for _, length := range []int64{0, 10} {
		_, err := tr.PostFile(context.Background(), "https://example.com/upload", "/nonexistent/upload.jpg", length, "")
		testutil.AssertErrorType(t, err, errors.ErrorTypeFileNotFound)
		assert.ErrorIs(t, err, errors.ErrFileNotFound)
	}
	assert.Empty(t, client.Requests)
}

func TestNativeTransport_EchoServer(t *testing.T) {
	server := testutil.NewEchoServer()
	defer server.Close()

	tr := NewNativeTransport(zerolog.Nop(), server.Client(), nil,
		testutil.NewConfigBuilder().WithUserAgent("echo-test/1.0").Build())

	t.Run("get", func(t *testing.T) {
		buf, err := tr.Get(context.Background(), server.URL+"/resource", "id=7")
		require.NoError(t, err)

		var echo testutil.EchoResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &echo))
		assert.Equal(t, http.MethodGet, echo.Method)
		assert.Equal(t, "/resource", echo.Path)
		assert.Equal(t, "id=7", echo.Query)
		assert.Equal(t, []string{"echo-test/1.0"}, echo.Headers["User-Agent"])
	})

	t.Run("post", func(t *testing.T) {
		buf, err := tr.Post(context.Background(), server.URL+"/token", "code=abc&state=xyz")
		require.NoError(t, err)

		var echo testutil.EchoResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &echo))
		assert.Equal(t, http.MethodPost, echo.Method)
		assert.Equal(t, "code=abc&state=xyz", echo.Body)
	})

	t.Run("post file", func(t *testing.T) {
		path := testutil.WriteTempFile(t, "photo.jpg", testutil.JPEGHeader)

		buf, err := tr.PostFile(context.Background(), server.URL+"/upload", path, 0, "")
		require.NoError(t, err)

		var echo testutil.EchoResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &echo))
		assert.Equal(t, string(testutil.JPEGHeader), echo.Body)
		assert.Equal(t, int64(len(testutil.JPEGHeader)), echo.ContentLength)
		assert.Equal(t, []string{DefaultUploadContentType}, echo.Headers["Content-Type"])
	})
}

func TestApplyUploadHeader(t *testing.T) {
	tests := []struct {
		header string
		name   string
		value  string
	}{
		{"", "Content-Type", DefaultUploadContentType},
		{"  ", "Content-Type", DefaultUploadContentType},
		{"text/plain", "Content-Type", "text/plain"},
		{"text/plain; charset=utf-8", "Content-Type", "text/plain; charset=utf-8"},
		{"Content-Type: application/pdf", "Content-Type", "application/pdf"},
		{"Slug: my-photo", "Slug", "my-photo"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "https://example.com", nil)
			require.NoError(t, err)

			applyUploadHeader(req, tt.header)
			assert.Equal(t, tt.value, req.Header.Get(tt.name))
		})
	}
}
