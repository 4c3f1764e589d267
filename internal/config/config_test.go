package config

import (
	"testing"

	"github.com/brendan.keane/oauthhttp/internal/command"
	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/spf13/pflag"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return flags
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg == nil {
		t.Fatal("NewConfig should return non-nil config")
	}
	if cfg.Backend != BackendNative {
		t.Errorf("default backend: got %q, expected %q", cfg.Backend, BackendNative)
	}
	if cfg.MaxCommandLength != command.DefaultMaxLength {
		t.Errorf("default max command length: got %d, expected %d", cfg.MaxCommandLength, command.DefaultMaxLength)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("default user agent: got %q, expected %q", cfg.UserAgent, DefaultUserAgent)
	}
	if len(cfg.Overrides) != 0 {
		t.Errorf("default overrides: got %v, expected none", cfg.Overrides)
	}
	if cfg.SigV4Enabled {
		t.Errorf("default SigV4: got %v, expected false", cfg.SigV4Enabled)
	}
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		command.EnvGetCommand:  "echo %u",
		command.EnvPostCommand: "",
		EnvBackend:             " Command ",
	}
	cfg := FromEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	if cfg.Backend != BackendCommand {
		t.Errorf("backend: got %q, expected %q", cfg.Backend, BackendCommand)
	}
	if cfg.Overrides[command.EnvGetCommand] != "echo %u" {
		t.Errorf("get override: got %q", cfg.Overrides[command.EnvGetCommand])
	}
	if _, ok := cfg.Overrides[command.EnvPostCommand]; !ok {
		t.Errorf("empty post override should still be recorded")
	}
}

func TestFromEnv_NilLookup(t *testing.T) {
	cfg := FromEnv(nil)
	if cfg.Backend != BackendNative {
		t.Errorf("backend: got %q, expected %q", cfg.Backend, BackendNative)
	}
}

func TestLoadFromFlags(t *testing.T) {
	t.Setenv(command.EnvGetCommand, "from-env %u")
	t.Setenv(command.EnvPostCommand, "env-post %p %u")
	t.Setenv(EnvBackend, "native")

	flags := newFlags(t,
		"--backend", "command",
		"--get-cmd", "echo %u",
		"--max-command-length", "100",
		"--oauth2-scope", "read", "--oauth2-scope", "write",
	)

	cfg, err := LoadFromFlags(flags)
	if err != nil {
		t.Fatalf("LoadFromFlags failed: %v", err)
	}

	if cfg.Backend != BackendCommand {
		t.Errorf("backend flag should win over env: got %q", cfg.Backend)
	}
	if cfg.Overrides[command.EnvGetCommand] != "echo %u" {
		t.Errorf("get-cmd flag should win over env: got %q", cfg.Overrides[command.EnvGetCommand])
	}
	if cfg.Overrides[command.EnvPostCommand] != "env-post %p %u" {
		t.Errorf("post override should come from env: got %q", cfg.Overrides[command.EnvPostCommand])
	}
	if cfg.MaxCommandLength != 100 {
		t.Errorf("max command length: got %d", cfg.MaxCommandLength)
	}
	if len(cfg.OAuth2.Scopes) != 2 {
		t.Errorf("scopes: got %v", cfg.OAuth2.Scopes)
	}
}

func TestLoadFromFlags_ClientSecretFromEnv(t *testing.T) {
	t.Setenv("OAUTH_HTTP_CLIENT_SECRET", "s3cret")

	cfg, err := LoadFromFlags(newFlags(t, "--oauth2-token-url", "http://token", "--oauth2-client-id", "id"))
	if err != nil {
		t.Fatalf("LoadFromFlags failed: %v", err)
	}
	if cfg.OAuth2.ClientSecret != "s3cret" {
		t.Errorf("client secret: got %q", cfg.OAuth2.ClientSecret)
	}
	if !cfg.OAuth2.Enabled() {
		t.Errorf("OAuth2 should be enabled")
	}
}

func TestConfig_Lookup(t *testing.T) {
	cfg := NewConfig()
	cfg.Overrides[command.EnvGetCommand] = "echo %u"

	lookup := cfg.Lookup()
	cfg.Overrides[command.EnvGetCommand] = "changed %u"

	value, ok := lookup(command.EnvGetCommand)
	if !ok || value != "echo %u" {
		t.Errorf("lookup should see a snapshot: got %q, %v", value, ok)
	}
	if _, ok := lookup(command.EnvPostCommand); ok {
		t.Errorf("unset override should not be found")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "command backend", modify: func(c *Config) { c.Backend = BackendCommand }},
		{name: "unknown backend", modify: func(c *Config) { c.Backend = "libcurl" }, wantErr: true},
		{name: "zero max length", modify: func(c *Config) { c.MaxCommandLength = 0 }, wantErr: true},
		{
			name: "sigv4 and oauth2",
			modify: func(c *Config) {
				c.SigV4Enabled = true
				c.OAuth2 = OAuth2Config{TokenURL: "http://t", ClientID: "id"}
			},
			wantErr: true,
		},
		{name: "oauth2 without client", modify: func(c *Config) { c.OAuth2.TokenURL = "http://t" }, wantErr: true},
		{name: "oauth2", modify: func(c *Config) { c.OAuth2 = OAuth2Config{TokenURL: "http://t", ClientID: "id"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.IsType(err, errors.ErrorTypeConfig) {
					t.Errorf("expected config error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
