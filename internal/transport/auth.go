package transport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/brendan.keane/oauthhttp/internal/config"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	lambdahttp "github.com/brendan.keane/oauthhttp/pkg/http"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// SigV4Signer applies AWS SigV4 signatures using the default credential chain
type SigV4Signer struct {
	logger  zerolog.Logger
	service string
	load    func(ctx context.Context) (aws.Config, error)
	now     func() time.Time
}

// NewSigV4Signer creates a signer for the given AWS service
func NewSigV4Signer(logger zerolog.Logger, service string) *SigV4Signer {
	return &SigV4Signer{
		logger:  logger.With().Str("component", "auth").Logger(),
		service: service,
		load: func(ctx context.Context) (aws.Config, error) {
			return awsconfig.LoadDefaultConfig(ctx)
		},
		now: time.Now,
	}
}

// Sign applies a SigV4 signature to req. lambda:// requests are invoked
// through the SDK and are left unsigned.
func (s *SigV4Signer) Sign(ctx context.Context, req *http.Request) error {
	if req.URL.Scheme == lambdahttp.LambdaScheme {
		s.logger.Debug().Msg("lambda URL detected, skipping SigV4")
		return nil
	}

	cfg, err := s.load(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to load AWS configuration").
			WithContext("suggestion", "ensure AWS credentials are configured")
	}

	region := cfg.Region
	if region == "" {
		return errors.New(errors.ErrorTypeConfig, "AWS region not configured").
			WithContext("suggestion", "set AWS_REGION or AWS_DEFAULT_REGION environment variable")
	}

	if cfg.Credentials == nil {
		return errors.New(errors.ErrorTypeConfig, "AWS credentials not configured")
	}
	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to retrieve AWS credentials").
			WithContext("suggestion", "check AWS credential configuration")
	}

	payloadHash, err := hashBody(req)
	if err != nil {
		return err
	}

	signer := v4.NewSigner()
	if err := signer.SignHTTP(ctx, creds, req, payloadHash, s.service, region, s.now()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeTransport, "failed to sign request with SigV4").
			WithContext("service", s.service).
			WithContext("region", region)
	}

	s.logger.Debug().
		Str("service", s.service).
		Str("region", region).
		Msg("SigV4 signature applied")

	return nil
}

// hashBody returns the hex SHA-256 of the request body and restores the body
func hashBody(req *http.Request) (string, error) {
	if req.Body == nil || req.Body == http.NoBody {
		sum := sha256.Sum256(nil)
		return hex.EncodeToString(sum[:]), nil
	}

	bodyBytes, err := io.ReadAll(req.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to read request body for signing")
	}
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	sum := sha256.Sum256(bodyBytes)
	return hex.EncodeToString(sum[:]), nil
}

// newBaseTransport returns the round tripper for native requests, adding
// client-credentials bearer tokens when OAuth2 is configured.
func newBaseTransport(ctx context.Context, cfg *config.Config, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if !cfg.OAuth2.Enabled() {
		return base
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.OAuth2.ClientID,
		ClientSecret: cfg.OAuth2.ClientSecret,
		TokenURL:     cfg.OAuth2.TokenURL,
		Scopes:       cfg.OAuth2.Scopes,
	}

	// The token endpoint is reached through base, never through the
	// authenticated transport itself.
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})

	return &oauth2.Transport{
		Source: cc.TokenSource(tokenCtx),
		Base:   base,
	}
}
