package transport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/brendan.keane/oauthhttp/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticAWSConfig(region string) func(ctx context.Context) (aws.Config, error) {
	return func(ctx context.Context) (aws.Config, error) {
		return aws.Config{
			Region: region,
			Credentials: aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}, nil
			}),
		}, nil
	}
}

func newTestSigner(load func(ctx context.Context) (aws.Config, error)) *SigV4Signer {
	signer := NewSigV4Signer(zerolog.Nop(), "execute-api")
	signer.load = load
	signer.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return signer
}

func TestSigV4Signer_Sign(t *testing.T) {
	signer := newTestSigner(staticAWSConfig("us-east-1"))

	req, err := http.NewRequest(http.MethodPost, "https://api.example.com/token", strings.NewReader("a=1"))
	require.NoError(t, err)

	require.NoError(t, signer.Sign(context.Background(), req))

	auth := req.Header.Get("Authorization")
	assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256"), "unexpected Authorization %q", auth)
	assert.Contains(t, auth, "us-east-1/execute-api")
	assert.NotEmpty(t, req.Header.Get("X-Amz-Date"))

	// Body must survive hashing
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "a=1", string(body))
}

func TestSigV4Signer_SkipsLambda(t *testing.T) {
	loaded := false
	signer := newTestSigner(func(ctx context.Context) (aws.Config, error) {
		loaded = true
		return aws.Config{}, nil
	})

	req, err := http.NewRequest(http.MethodGet, "lambda://my-function/path", nil)
	require.NoError(t, err)

	require.NoError(t, signer.Sign(context.Background(), req))
	assert.False(t, loaded)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestSigV4Signer_Errors(t *testing.T) {
	tests := []struct {
		name string
		load func(ctx context.Context) (aws.Config, error)
	}{
		{
			name: "config load failure",
			load: func(ctx context.Context) (aws.Config, error) {
				return aws.Config{}, stderrors.New("no profile")
			},
		},
		{
			name: "missing region",
			load: staticAWSConfig(""),
		},
		{
			name: "missing credentials",
			load: func(ctx context.Context) (aws.Config, error) {
				return aws.Config{Region: "us-east-1"}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "https://api.example.com", nil)
			require.NoError(t, err)

			err = newTestSigner(tt.load).Sign(context.Background(), req)
			testutil.AssertErrorType(t, err, errors.ErrorTypeConfig)
		})
	}
}

func TestHashBody(t *testing.T) {
	empty := sha256.Sum256(nil)

	req, err := http.NewRequest(http.MethodGet, "https://example.com", nil)
	require.NoError(t, err)
	hash, err := hashBody(req)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(empty[:]), hash)

	req, err = http.NewRequest(http.MethodPost, "https://example.com", strings.NewReader("payload"))
	require.NoError(t, err)
	hash, err = hashBody(req)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("payload"))
	assert.Equal(t, hex.EncodeToString(sum[:]), hash)

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
}

func TestNewBaseTransport_WithoutOAuth2(t *testing.T) {
	base := http.DefaultTransport
	rt := newBaseTransport(context.Background(), testutil.NewConfigBuilder().Build(), base)
	assert.Equal(t, base, rt)
}

func TestNewBaseTransport_OAuth2(t *testing.T) {
	tokens := testutil.NewTokenServer("test-token")
	defer tokens.Close()

	server := testutil.NewEchoServer()
	defer server.Close()

	cfg := testutil.NewConfigBuilder().
		WithOAuth2(tokens.URL, "client-id", "client-secret", "read").
		Build()

	client := &http.Client{Transport: newBaseTransport(context.Background(), cfg, nil)}
	tr := NewNativeTransport(zerolog.Nop(), client, nil, cfg)

	for i := 0; i < 2; i++ {
		buf, err := tr.Get(context.Background(), server.URL+"/me", "")
		require.NoError(t, err)

		var echo testutil.EchoResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &echo))
		assert.Equal(t, []string{"Bearer test-token"}, echo.Headers["Authorization"])
	}

	// The token is cached between requests
	assert.Equal(t, int32(1), tokens.Issued.Load())
}

func TestNewBaseTransport_TokenFailure(t *testing.T) {
	tokens := testutil.NewStaticServer(http.StatusUnauthorized, `{"error":"invalid_client"}`)
	defer tokens.Close()

	server := testutil.NewEchoServer()
	defer server.Close()

	cfg := testutil.NewConfigBuilder().WithOAuth2(tokens.URL, "client-id", "wrong").Build()
	client := &http.Client{Transport: newBaseTransport(context.Background(), cfg, nil)}
	tr := NewNativeTransport(zerolog.Nop(), client, nil, cfg)

	_, err := tr.Get(context.Background(), server.URL, "")
	testutil.AssertErrorType(t, err, errors.ErrorTypeTransport)
}
