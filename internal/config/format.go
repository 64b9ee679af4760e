package config

import (
	"fmt"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// NormalizeFormat lower-cases and validates an output format. Empty selects text.
func NormalizeFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	switch format {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format %q (expected %s|%s)", raw, FormatText, FormatJSON)
	}
}
