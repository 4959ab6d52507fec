package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Finding is one structured conflict from the model's reply.
type Finding struct {
	Title        string   `json:"title"`
	Severity     string   `json:"severity"`
	Description  string   `json:"description"`
	DocumentRefs []string `json:"document_refs"`
}

var validSeverities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

// ParseConflictFindings parses a model reply into findings. The model is a
// text generator, so structure is a convention, not a schema: code fences
// are tolerated, anything else malformed is an error and the caller keeps
// the raw reply for diagnosis.
func ParseConflictFindings(raw string) ([]Finding, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty reply")
	}

	var findings []Finding
	if err := json.Unmarshal([]byte(cleaned), &findings); err != nil {
		return nil, fmt.Errorf("reply is not a JSON findings array: %w", err)
	}

	for i, f := range findings {
		if strings.TrimSpace(f.Title) == "" {
			return nil, fmt.Errorf("finding %d has no title", i)
		}
		severity := strings.ToLower(strings.TrimSpace(f.Severity))
		if !validSeverities[severity] {
			return nil, fmt.Errorf("finding %d has invalid severity %q", i, f.Severity)
		}
		findings[i].Severity = severity
	}

	return findings, nil
}

// StripCodeFences unwraps a reply the model wrapped in markdown fences,
// with or without a language tag.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence line.
	if idx := strings.Index(s, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "[{") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
