package config

import (
	"context"
	"os"
	"strings"

	"github.com/brendan.keane/oauthhttp/internal/command"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/spf13/pflag"
)

// Version is reported in the default user agent and by the MCP server.
const Version = "1.0.0"

// DefaultUserAgent identifies requests made by this library.
const DefaultUserAgent = "oauthhttp-agent/" + Version

// Backends
const (
	BackendNative  = "native"
	BackendCommand = "command"
)

// EnvBackend selects the backend when --backend is not given.
const EnvBackend = "OAUTH_HTTP_BACKEND"

// Config holds all application configuration
type Config struct {
	// Transport selection
	Backend string

	// Command templates keyed by environment variable name. A key that is
	// present overrides the built-in template even when its value is empty.
	Overrides        map[string]string
	MaxCommandLength int

	UserAgent string
	Verbose   bool
	Debug     bool

	// Authentication for the native backend
	SigV4Enabled bool
	SigV4Service string
	OAuth2       OAuth2Config

	// MCP settings
	MCP MCPConfig
}

// OAuth2Config enables a client-credentials bearer token on native requests
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Enabled reports whether a token endpoint is configured
func (c OAuth2Config) Enabled() bool {
	return c.TokenURL != ""
}

// MCPConfig holds MCP-specific configuration
type MCPConfig struct {
	Description string // Server instructions for LLM context
}

// contextKey is a custom type for context keys
type contextKey string

// configKey is the context key for storing config
const configKey contextKey = "config"

// WithConfig adds config to context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok
}

// NewConfig creates a Config with default values
func NewConfig() *Config {
	return &Config{
		Backend:          BackendNative,
		Overrides:        map[string]string{},
		MaxCommandLength: command.DefaultMaxLength,
		UserAgent:        DefaultUserAgent,
		SigV4Service:     "execute-api",
	}
}

// FromEnv creates a Config from environment-style values. It is the entry
// point for embedding the transport without a command line.
func FromEnv(lookup command.LookupFunc) *Config {
	config := NewConfig()
	if lookup == nil {
		return config
	}

	for _, key := range []string{command.EnvGetCommand, command.EnvPostCommand} {
		if value, ok := lookup(key); ok {
			config.Overrides[key] = value
		}
	}
	if backend, ok := lookup(EnvBackend); ok && backend != "" {
		config.Backend = strings.ToLower(strings.TrimSpace(backend))
	}

	return config
}

// LoadFromFlags creates a Config from command line flags, falling back to the
// process environment for anything not given on the command line.
func LoadFromFlags(flags *pflag.FlagSet) (*Config, error) {
	config := FromEnv(os.LookupEnv)

	var err error

	if flags.Changed("backend") {
		var backend string
		if backend, err = flags.GetString("backend"); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get backend flag")
		}
		config.Backend = strings.ToLower(strings.TrimSpace(backend))
	}

	// Template flags take precedence over the environment
	for flag, key := range map[string]string{"get-cmd": command.EnvGetCommand, "post-cmd": command.EnvPostCommand} {
		if !flags.Changed(flag) {
			continue
		}
		value, err := flags.GetString(flag)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrorTypeConfig, "failed to get %s flag", flag)
		}
		config.Overrides[key] = value
	}

	if config.MaxCommandLength, err = flags.GetInt("max-command-length"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get max-command-length flag")
	}

	if config.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get user-agent flag")
	}

	if config.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get verbose flag")
	}

	if config.Debug, err = flags.GetBool("debug"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get debug flag")
	}

	// Authentication flags
	if config.SigV4Enabled, err = flags.GetBool("sig-v4"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get sig-v4 flag")
	}

	if config.SigV4Service, err = flags.GetString("sig-v4-service"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get sig-v4-service flag")
	}

	if config.OAuth2.TokenURL, err = flags.GetString("oauth2-token-url"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get oauth2-token-url flag")
	}

	if config.OAuth2.ClientID, err = flags.GetString("oauth2-client-id"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get oauth2-client-id flag")
	}

	if config.OAuth2.ClientSecret, err = flags.GetString("oauth2-client-secret"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get oauth2-client-secret flag")
	}

	// Secrets are better kept out of shell history
	if config.OAuth2.ClientSecret == "" {
		config.OAuth2.ClientSecret = os.Getenv("OAUTH_HTTP_CLIENT_SECRET")
	}

	if config.OAuth2.Scopes, err = flags.GetStringSlice("oauth2-scope"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get oauth2-scope flag")
	}

	if config.MCP.Description, err = flags.GetString("mcp-desc"); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to get mcp-desc flag")
	}

	if config.MCP.Description == "" {
		if desc := os.Getenv("OAUTH_HTTP_MCP_DESCRIPTION"); desc != "" {
			config.MCP.Description = desc
		}
	}

	return config, nil
}

// RegisterFlags adds the flags read by LoadFromFlags to a flag set
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("backend", BackendNative, "Transport backend (native, command)")
	flags.String("get-cmd", "", "GET command template, overrides "+command.EnvGetCommand)
	flags.String("post-cmd", "", "POST command template, overrides "+command.EnvPostCommand)
	flags.Int("max-command-length", command.DefaultMaxLength, "Maximum length of a formatted HTTP command")
	flags.String("user-agent", DefaultUserAgent, "User agent for native requests and default command templates")
	flags.BoolP("verbose", "v", false, "Verbose logging")
	flags.Bool("debug", false, "Debug logging (includes executed commands)")
	flags.Bool("sig-v4", false, "Enable AWS SigV4 signing (native backend)")
	flags.String("sig-v4-service", "execute-api", "AWS service name for SigV4 signing")
	flags.String("oauth2-token-url", "", "OAuth2 token endpoint for client-credentials bearer tokens (native backend)")
	flags.String("oauth2-client-id", "", "OAuth2 client ID")
	flags.String("oauth2-client-secret", "", "OAuth2 client secret (or OAUTH_HTTP_CLIENT_SECRET)")
	flags.StringSlice("oauth2-scope", []string{}, "OAuth2 scopes (can be used multiple times)")
	flags.String("mcp-desc", "", "MCP server instructions (or OAUTH_HTTP_MCP_DESCRIPTION)")
}

// Lookup returns a snapshot of the template overrides as a LookupFunc
func (c *Config) Lookup() command.LookupFunc {
	snapshot := make(map[string]string, len(c.Overrides))
	for key, value := range c.Overrides {
		snapshot[key] = value
	}
	return func(key string) (string, bool) {
		value, ok := snapshot[key]
		return value, ok
	}
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNative, BackendCommand:
	default:
		return errors.New(errors.ErrorTypeConfig, "unknown backend").
			WithContext("field", "backend").
			WithContext("backend", c.Backend).
			WithContext("valid_backends", []string{BackendNative, BackendCommand})
	}

	if c.MaxCommandLength <= 0 {
		return errors.New(errors.ErrorTypeConfig, "max command length must be positive").
			WithContext("field", "max-command-length").
			WithContext("value", c.MaxCommandLength)
	}

	if c.SigV4Enabled && c.OAuth2.Enabled() {
		return errors.New(errors.ErrorTypeConfig, "SigV4 signing and OAuth2 bearer tokens both set the Authorization header").
			WithContext("field", "auth").
			WithContext("suggestion", "enable only one of --sig-v4 and --oauth2-token-url")
	}

	if c.OAuth2.Enabled() && c.OAuth2.ClientID == "" {
		return errors.New(errors.ErrorTypeConfig, "OAuth2 client ID is required with a token URL").
			WithContext("field", "oauth2-client-id")
	}

	return nil
}
