package command

import (
	"strings"

	"github.com/brendan.keane/oauthhttp/internal/errors"
)

// DefaultMaxLength bounds the rendered command line including its terminating
// NUL, leaving 8191 usable bytes.
const DefaultMaxLength = 8192

// Command is a formatted HTTP client invocation in argv form.
type Command struct {
	Args []string
}

// String renders the command line with arguments separated by single spaces.
func (c *Command) String() string {
	return strings.Join(c.Args, " ")
}

// EffectiveURL appends query to url with a '?' separator. Nothing is escaped.
// An empty query is treated as absent and leaves url unchanged, so "url?" is
// never produced.
func EffectiveURL(url, query string) string {
	if query == "" {
		return url
	}
	return url + "?" + query
}

// Format substitutes the request values into tpl.
//
// For GET the single slot receives EffectiveURL(url, bodyOrQuery). For POST the
// two slots are filled positionally: the template's order decides whether the
// URL or the body goes into the first one. Values land inside argv entries and
// are never interpreted by a shell.
func Format(tpl *Template, url, bodyOrQuery string, maxLength int) (*Command, error) {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var values []string
	switch {
	case tpl.Kind == KindGET:
		values = []string{EffectiveURL(url, bodyOrQuery)}
	case tpl.Order == BodyFirst:
		values = []string{bodyOrQuery, url}
	default:
		values = []string{url, bodyOrQuery}
	}

	args := tpl.Args()
	next := 0
	for i, arg := range args {
		args[i] = substitute(arg, values, &next)
	}

	cmd := &Command{Args: args}
	// maxLength counts the NUL the rendered line would need.
	if length := len(cmd.String()); length >= maxLength {
		return nil, errors.New(errors.ErrorTypeCommandTooLong, "HTTP command too long").
			WithContext("length", length).
			WithContext("max", maxLength).
			WithContext("kind", tpl.Kind.String())
	}

	return cmd, nil
}

// substitute replaces placeholders in arg, left to right, with values[*next:].
func substitute(arg string, values []string, next *int) string {
	var sb strings.Builder
	for {
		i := indexPlaceholder(arg)
		if i < 0 || *next >= len(values) {
			sb.WriteString(arg)
			return sb.String()
		}
		sb.WriteString(arg[:i])
		sb.WriteString(values[*next])
		*next++
		arg = arg[i+2:]
	}
}

func indexPlaceholder(s string) int {
	u := strings.Index(s, URLPlaceholder)
	p := strings.Index(s, BodyPlaceholder)
	switch {
	case u < 0:
		return p
	case p < 0:
		return u
	case u < p:
		return u
	default:
		return p
	}
}
