package caption

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// parseTags decomposes a model response into at most maxTags cleaned tags.
//
// The strict path expects a JSON array of strings, possibly wrapped in a
// markdown code fence. The fallback path tolerates free-text answers:
// bulleted lines, comma-separated lists, one tag per line. Models drift
// between these shapes between versions, so the parser accepts all of them
// and only fails when nothing usable remains.
func parseTags(content string, maxTags int) ([]string, error) {
	trimmed := strings.TrimSpace(stripCodeFence(content))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty tag response", ErrParse)
	}

	var raw []string
	if err := json.Unmarshal([]byte(trimmed), &raw); err == nil {
		tags := cleanTags(raw, maxTags)
		if len(tags) == 0 {
			return nil, fmt.Errorf("%w: JSON array contained no usable tags", ErrParse)
		}
		return tags, nil
	}

	// Free-text fallback: split lines, strip bullets, expand comma lists.
	var candidates []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "-*"))
		if line == "" {
			continue
		}
		if strings.Contains(line, ",") {
			candidates = append(candidates, strings.Split(line, ",")...)
		} else {
			candidates = append(candidates, line)
		}
	}

	tags := cleanTags(candidates, maxTags)
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: could not extract tags from %q", ErrParse, truncate(content, 80))
	}
	return tags, nil
}

// cleanTags lowercases, trims punctuation, drops one-character noise and
// duplicates, and caps the list.
func cleanTags(raw []string, maxTags int) []string {
	cleaned := lo.FilterMap(raw, func(tag string, _ int) (string, bool) {
		tag = strings.ToLower(strings.Trim(strings.TrimSpace(tag), `."'`))
		return tag, len(tag) > 1
	})
	cleaned = lo.Uniq(cleaned)
	if len(cleaned) > maxTags {
		cleaned = cleaned[:maxTags]
	}
	return cleaned
}

// stripCodeFence removes a surrounding markdown code fence if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
