package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateServerName checks that name is usable as a server id and as a
// directory name directly under the servers root. Returns nil if valid, or
// an error describing the problem.
func ValidateServerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("server name too long (max 64 characters)")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("server name cannot contain path separators")
	}
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return fmt.Errorf("server name cannot start with a dot")
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return fmt.Errorf("server name contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateToolName checks that name is a valid snake_case identifier for a
// generated tool function.
func ValidateToolName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	for _, r := range name {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if !isLower && !isDigit && r != '_' {
			return fmt.Errorf("tool name must be snake_case (lowercase with underscores)")
		}
	}

	first := rune(name[0])
	if first >= '0' && first <= '9' {
		return fmt.Errorf("tool name cannot start with a digit")
	}

	return nil
}
