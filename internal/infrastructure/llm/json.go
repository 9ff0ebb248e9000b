package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"NewsTranslatorBot/internal/domain"
)

// decodeJSON parses a model response into v, tolerating markdown code fences and
// prose around the object. Anything else is a domain.ErrModel.
func decodeJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty response", domain.ErrModel)
	}

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		endIdx := len(lines)
		for i := len(lines) - 1; i > 0; i-- {
			if strings.TrimSpace(lines[i]) == "```" {
				endIdx = i
				break
			}
		}
		text = strings.Join(lines[1:endIdx], "\n")
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrModel, err)
	}
	return nil
}

// normalizeEnum matches value case-insensitively against allowed and returns the
// canonical spelling.
func normalizeEnum(field, value string, allowed []string) (string, error) {
	value = strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q is not one of %s", domain.ErrModel, field, value, strings.Join(allowed, ", "))
}
