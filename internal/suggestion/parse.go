package suggestion

import (
	"regexp"
	"strings"
)

var (
	listItem = regexp.MustCompile(`^(?:[-*•+]|\d{1,3}[.)])\s+(.+)$`)
	emphasis = strings.NewReplacer("**", "", "__", "", "`", "")
)

// ParseSuggestions extracts list items from model output. Bullets (-, *, •, +)
// and numbered items (1. or 1)) are recognized; headings are skipped. Text
// without any list markers falls back to its non-empty lines. Results are
// deduplicated case-insensitively and capped at limit when limit is positive.
func ParseSuggestions(text string, limit int) []string {
	var listed, plain []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := listItem.FindStringSubmatch(line); m != nil {
			if item := clean(m[1]); item != "" && !isHeading(item) {
				listed = append(listed, item)
			}
			continue
		}
		if item := clean(line); item != "" && !isHeading(item) && !strings.HasPrefix(line, "#") {
			plain = append(plain, item)
		}
	}

	items := listed
	if len(items) == 0 {
		items = plain
	}
	return dedupe(items, limit)
}

func clean(s string) string {
	s = emphasis.Replace(s)
	s = strings.Trim(s, "*_ \t")
	return strings.Join(strings.Fields(s), " ")
}

func isHeading(s string) bool {
	return strings.HasPrefix(s, "#") || strings.HasSuffix(s, ":")
}

func dedupe(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
