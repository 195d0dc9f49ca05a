package config

import (
	"fmt"
	"os"
	"strings"
)

// LoadDomainContext reads the static knowledge file injected into every
// system instruction. A missing or unreadable file yields the placeholder
// together with the error so the caller can log it and keep starting.
func LoadDomainContext(path string) (string, error) {
	if path == "" {
		return DomainContextPlaceholder, fmt.Errorf("domain context file not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DomainContextPlaceholder, fmt.Errorf("failed to read domain context %s: %w", path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return DomainContextPlaceholder, fmt.Errorf("domain context file %s is empty", path)
	}
	return text, nil
}
