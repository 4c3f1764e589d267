package mcp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/brendan.keane/oauthhttp/internal/errors"
	"github.com/jmespath/go-jmespath"
	"github.com/rs/zerolog"
)

const (
	// DefaultContextLines is used when a regex filter names no context
	DefaultContextLines = 5

	charsPerLine    = 80
	minContextChars = 100
)

// FilterResult is a reduced response body plus a description of the reduction
type FilterResult struct {
	Content string                 `json:"content"`
	Meta    map[string]interface{} `json:"_meta"`
}

// estimateTokens approximates token count using chars/4 heuristic
func estimateTokens(data string) int {
	return len(data) / 4
}

func filterMeta(filter map[string]interface{}, result, source string) map[string]interface{} {
	return map[string]interface{}{
		"filter": filter,
		"tokens": map[string]interface{}{
			"returned": estimateTokens(result),
			"source":   estimateTokens(source),
		},
		"bytes": map[string]interface{}{
			"returned": len(result),
			"source":   len(source),
		},
	}
}

type contextWindow struct {
	start int
	end   int
}

// filterRegex returns the regions of body around each match of pattern.
// Overlapping regions are merged.
func filterRegex(logger zerolog.Logger, body, pattern string, contextLines int) (*FilterResult, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid regex pattern").
			WithContext("pattern", pattern)
	}

	contextChars := max(contextLines*charsPerLine, minContextChars)

	matches := re.FindAllStringIndex(body, -1)
	filter := map[string]interface{}{
		"type":          "regex",
		"pattern":       pattern,
		"total_matches": len(matches),
	}

	if len(matches) == 0 {
		logger.Debug().Str("pattern", pattern).Msg("regex filter found no matches")
		return &FilterResult{Meta: filterMeta(filter, "", body)}, nil
	}

	windows := make([]contextWindow, 0, len(matches))
	for _, match := range matches {
		windows = append(windows, contextWindow{
			start: max(0, match[0]-contextChars),
			end:   min(len(body), match[1]+contextChars),
		})
	}

	// Matches are ordered, so windows only overlap their predecessor
	merged := []contextWindow{windows[0]}
	for _, curr := range windows[1:] {
		last := &merged[len(merged)-1]
		if curr.start <= last.end {
			last.end = max(last.end, curr.end)
			continue
		}
		merged = append(merged, curr)
	}
	filter["merged_windows"] = len(merged)

	blocks := make([]string, 0, len(merged))
	for i, window := range merged {
		excerpt := body[window.start:window.end]
		if window.start > 0 {
			excerpt = "..." + excerpt
		}
		if window.end < len(body) {
			excerpt += "..."
		}
		header := fmt.Sprintf("=== Context Window %d (bytes %d-%d) ===", i+1, window.start, window.end)
		blocks = append(blocks, header+"\n"+excerpt)
	}
	content := strings.Join(blocks, "\n\n")

	logger.Debug().
		Str("pattern", pattern).
		Int("total_matches", len(matches)).
		Int("merged_windows", len(merged)).
		Int("source_bytes", len(body)).
		Int("result_bytes", len(content)).
		Msg("regex filter applied")

	return &FilterResult{Content: content, Meta: filterMeta(filter, content, body)}, nil
}

// filterJMESPath evaluates expression against a JSON body
func filterJMESPath(logger zerolog.Logger, body, expression string) (*FilterResult, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "response is not valid JSON")
	}

	result, err := jmespath.Search(expression, data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid jmespath expression").
			WithContext("expression", expression)
	}

	filtered, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to marshal filtered result")
	}

	resultCount := 0
	if arr, ok := result.([]interface{}); ok {
		resultCount = len(arr)
	} else if result != nil {
		resultCount = 1
	}

	content := string(filtered)

	logger.Debug().
		Str("expression", expression).
		Int("result_count", resultCount).
		Msg("jmespath filter applied")

	return &FilterResult{
		Content: content,
		Meta: filterMeta(map[string]interface{}{
			"type":         "jmespath",
			"expression":   expression,
			"result_count": resultCount,
		}, content, body),
	}, nil
}
