package reasoning

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Model output is JSON in theory, JSON wrapped in markdown fences with
// trailing commas in practice. parsePayload tries progressively more
// forgiving strategies before giving up.
var (
	codeFenceRegex     = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
	objectRegex        = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
)

func parsePayload[T any](text string, out *T) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if json.Unmarshal([]byte(trimmed), out) == nil {
		return true
	}

	cleaned := codeFenceRegex.ReplaceAllString(trimmed, "$1")
	cleaned = trailingCommaRegex.ReplaceAllString(cleaned, "$1")
	cleaned = strings.TrimSpace(cleaned)
	if json.Unmarshal([]byte(cleaned), out) == nil {
		return true
	}

	if match := objectRegex.FindString(cleaned); match != "" {
		if json.Unmarshal([]byte(match), out) == nil {
			return true
		}
	}
	return false
}
