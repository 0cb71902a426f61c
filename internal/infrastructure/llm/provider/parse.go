package provider

import "strings"

// parseQuotes turns a model reply into quotes: one per non-empty line, in
// order, duplicates kept. An empty reply or the sentinel alone means none.
func parseQuotes(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || trimmed == noMatchesSentinel {
		return []string{}
	}

	quotes := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, noMatchesSentinel) {
			continue
		}
		quotes = append(quotes, line)
	}
	return quotes
}
