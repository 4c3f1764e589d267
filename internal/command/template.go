package command

import (
	"fmt"
	"strings"

	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/mattn/go-shellwords"
	"github.com/rs/zerolog"
)

// Environment variables that override the built-in command templates.
const (
	EnvPostCommand = "OAUTH_HTTP_CMD"
	EnvGetCommand  = "OAUTH_HTTP_GET_CMD"
)

// Placeholders recognised in command templates.
const (
	URLPlaceholder  = "%u"
	BodyPlaceholder = "%p"
)

// Template sources
const (
	SourceOverride = "override"
	SourceDefault  = "default"
)

// Kind selects which request a template is used for.
type Kind int

const (
	KindGET Kind = iota
	KindPOST
)

func (k Kind) String() string {
	if k == KindPOST {
		return "POST"
	}
	return "GET"
}

// EnvVar names the environment variable holding the override for k.
func (k Kind) EnvVar() string {
	if k == KindPOST {
		return EnvPostCommand
	}
	return EnvGetCommand
}

// Order tells which placeholder comes first in a template.
type Order int

const (
	URLFirst Order = iota
	BodyFirst
)

func (o Order) String() string {
	if o == BodyFirst {
		return "body-first"
	}
	return "url-first"
}

// LookupFunc reads a configuration value. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Template is a validated command template for one request kind.
type Template struct {
	Kind   Kind
	Raw    string
	Source string
	EnvVar string
	Order  Order

	args []string
}

// Args returns a copy of the tokenized template.
func (t *Template) Args() []string {
	return append([]string(nil), t.args...)
}

// DefaultTemplate returns the built-in curl invocation for kind.
func DefaultTemplate(kind Kind, userAgent string) string {
	if kind == KindPOST {
		return fmt.Sprintf("curl -sA '%s' -d '%s' '%s'", userAgent, BodyPlaceholder, URLPlaceholder)
	}
	return fmt.Sprintf("curl -sA '%s' '%s'", userAgent, URLPlaceholder)
}

// OrderOf compares the offsets of %u and %p in raw. A template without %p is
// URL-first.
func OrderOf(raw string) Order {
	u := strings.Index(raw, URLPlaceholder)
	p := strings.Index(raw, BodyPlaceholder)
	if p >= 0 && (u < 0 || p < u) {
		return BodyFirst
	}
	return URLFirst
}

// Parse validates raw as a template for kind and tokenizes it into argv form.
func Parse(kind Kind, raw string) (*Template, error) {
	urls := strings.Count(raw, URLPlaceholder)
	bodies := strings.Count(raw, BodyPlaceholder)

	switch {
	case urls == 0:
		return nil, invalidTemplate(kind, "missing %u placeholder")
	case urls > 1:
		return nil, invalidTemplate(kind, "%u placeholder appears more than once")
	case kind == KindPOST && bodies == 0:
		return nil, invalidTemplate(kind, "missing %p placeholder")
	case kind == KindPOST && bodies > 1:
		return nil, invalidTemplate(kind, "%p placeholder appears more than once")
	case kind == KindGET && bodies > 0:
		return nil, invalidTemplate(kind, "%p placeholder is not allowed in GET templates")
	}

	parser := shellwords.NewParser()
	args, err := parser.Parse(raw)
	if err != nil {
		return nil, invalidTemplate(kind, "template is not a valid command line").
			WithContext("cause", err.Error())
	}
	if parser.Position >= 0 {
		return nil, invalidTemplate(kind, "shell operators are not supported in templates").
			WithContext("offset", parser.Position)
	}
	if len(args) == 0 {
		return nil, invalidTemplate(kind, "template is empty")
	}
	if strings.Contains(args[0], URLPlaceholder) || strings.Contains(args[0], BodyPlaceholder) {
		return nil, invalidTemplate(kind, "placeholders cannot name the program")
	}

	return &Template{
		Kind:   kind,
		Raw:    raw,
		EnvVar: kind.EnvVar(),
		Order:  OrderOf(raw),
		args:   args,
	}, nil
}

func invalidTemplate(kind Kind, reason string) *errors.Error {
	return errors.New(errors.ErrorTypeInvalidTemplate, "invalid HTTP command").
		WithContext("env_var", kind.EnvVar()).
		WithContext("kind", kind.String()).
		WithContext("reason", reason)
}

// Resolver picks the command template for each request, preferring the
// configured override over the built-in default.
type Resolver struct {
	logger    zerolog.Logger
	lookup    LookupFunc
	userAgent string
}

// NewResolver creates a resolver. A nil lookup means no overrides.
func NewResolver(logger zerolog.Logger, lookup LookupFunc, userAgent string) *Resolver {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return &Resolver{
		logger:    logger.With().Str("component", "template_resolver").Logger(),
		lookup:    lookup,
		userAgent: userAgent,
	}
}

// Resolve returns the validated template for kind. Invalid templates are
// reported on the logger so operators see which variable to fix.
func (r *Resolver) Resolve(kind Kind) (*Template, error) {
	raw, ok := r.lookup(kind.EnvVar())
	source := SourceOverride
	if !ok {
		raw = DefaultTemplate(kind, r.userAgent)
		source = SourceDefault
	}

	tpl, err := Parse(kind, raw)
	if err != nil {
		r.logger.Error().
			Str("env_var", kind.EnvVar()).
			Str("source", source).
			Interface("reason", errors.GetContext(err)["reason"]).
			Msgf("invalid HTTP command, set the '%s' environment variable", kind.EnvVar())
		return nil, err
	}
	tpl.Source = source

	r.logger.Debug().
		Str("kind", kind.String()).
		Str("source", source).
		Str("order", tpl.Order.String()).
		Msg("command template resolved")

	return tpl, nil
}
