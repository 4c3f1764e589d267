package transport

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/brendan.keane/oauthhttp/internal/buffer"
	"github.com/brendan.keane/oauthhttp/internal/command"
	"github.com/brendan.keane/oauthhttp/internal/config"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	applog "github.com/brendan.keane/oauthhttp/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultUploadContentType is sent with file uploads that name no content type
const DefaultUploadContentType = "image/jpeg"

// nativeTransport implements Transport with a Go HTTP client
type nativeTransport struct {
	logger     zerolog.Logger
	httpClient HTTPClientProvider
	signer     RequestSigner
	userAgent  string
	chunkSize  int
}

// NewNativeTransport creates a Transport backed by httpClient. signer may be nil.
func NewNativeTransport(logger zerolog.Logger, httpClient HTTPClientProvider, signer RequestSigner, cfg *config.Config) Transport {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	return &nativeTransport{
		logger:     applog.ForComponent(logger, "native_transport"),
		httpClient: httpClient,
		signer:     signer,
		userAgent:  userAgent,
		chunkSize:  buffer.DefaultChunkSize,
	}
}

func (t *nativeTransport) Backend() string {
	return config.BackendNative
}

// Get performs a GET request for url plus the optional query
func (t *nativeTransport) Get(ctx context.Context, url, query string) (*buffer.Buffer, error) {
	targetURL := command.EffectiveURL(url, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeTransport, "failed to create HTTP request").
			WithContext("url", targetURL)
	}

	return t.execute(ctx, req)
}

// Post performs a form-encoded POST request
func (t *nativeTransport) Post(ctx context.Context, url, body string) (*buffer.Buffer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeTransport, "failed to create HTTP request").
			WithContext("url", url)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return t.execute(ctx, req)
}

// PostFile uploads length bytes of the file at path as the request body
func (t *nativeTransport) PostFile(ctx context.Context, url, path string, length int64, contentType string) (*buffer.Buffer, error) {
	logger := t.logger.With().Str("path", path).Logger()

	if length == 0 {
		info, err := os.Stat(path)
		if err != nil {
			logger.Error().Err(err).Msg("cannot stat upload file")
			return nil, errors.Wrap(err, errors.ErrorTypeFileNotFound, "cannot stat upload file").
				WithContext("path", path)
		}
		length = info.Size()
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Error().Err(err).Msg("cannot open upload file")
		return nil, errors.Wrap(err, errors.ErrorTypeFileNotFound, "cannot open upload file").
			WithContext("path", path)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, io.LimitReader(file, length))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeTransport, "failed to create HTTP request").
			WithContext("url", url)
	}
	req.ContentLength = length
	applyUploadHeader(req, contentType)

	logger.Debug().
		Int64("content_length", length).
		Str("content_type", req.Header.Get("Content-Type")).
		Msg("uploading file")

	return t.execute(ctx, req)
}

// applyUploadHeader sets the custom header line, a bare content type, or the default
func applyUploadHeader(req *http.Request, header string) {
	header = strings.TrimSpace(header)
	if header == "" {
		req.Header.Set("Content-Type", DefaultUploadContentType)
		return
	}

	name, value, found := strings.Cut(header, ":")
	if !found || strings.ContainsAny(name, " /;") {
		req.Header.Set("Content-Type", strings.TrimSuffix(header, ";"))
		return
	}

	name = strings.TrimSpace(name)
	value = strings.TrimSuffix(strings.TrimSpace(value), ";")
	req.Header.Set(name, value)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", DefaultUploadContentType)
	}
}

// execute signs, sends and captures a request. The status code is not
// inspected; the body is returned as is.
func (t *nativeTransport) execute(ctx context.Context, req *http.Request) (*buffer.Buffer, error) {
	logger := applog.ForRequest(t.logger, config.BackendNative, req.Method, req.URL.String()).With().
		Str("request_id", uuid.NewString()).
		Logger()

	req.Header.Set("User-Agent", t.userAgent)

	if t.signer != nil {
		if err := t.signer.Sign(ctx, req); err != nil {
			logger.Error().Err(err).Msg("failed to sign request")
			return nil, errors.Wrap(err, errors.ErrorTypeTransport, "failed to sign request").
				WithContext("url", req.URL.String())
		}
	}

	logger.Debug().Msg("executing HTTP request")

	startTime := time.Now()
	resp, err := t.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("duration", duration).
			Msg("HTTP request failed")
		return nil, errors.Wrap(err, errors.ErrorTypeTransport, "HTTP request failed").
			WithContext("url", req.URL.String()).
			WithContext("duration", duration)
	}
	defer resp.Body.Close()

	buf, err := buffer.Capture(resp.Body, t.chunkSize)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read response body")
		return nil, errors.Wrap(err, errors.ErrorTypeTransport, "failed to read response body").
			WithContext("url", req.URL.String())
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", buf.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("HTTP request completed")

	return buf, nil
}
