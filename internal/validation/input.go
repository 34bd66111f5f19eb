// Package validation provides input checks for non-agent API parameters and
// connection settings.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Input length limits
const (
	MaxParamNameLength  = 64
	MaxParamValueLength = 2048 // keeps the compiled URI under common proxy limits
)

// ValidateDigits checks that value is all ASCII digits with a length in
// [minLen, maxLen].
func ValidateDigits(field, value string, minLen, maxLen int) error {
	if value == "" {
		return fmt.Errorf("%s must be all numbers, %d-%d digits (got empty value)", field, minLen, maxLen)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return fmt.Errorf("%s must be all numbers, %d-%d digits (invalid character '%c')", field, minLen, maxLen, r)
		}
	}
	if n := len(value); n < minLen || n > maxLen {
		return fmt.Errorf("%s must be all numbers, %d-%d digits (got %d)", field, minLen, maxLen, n)
	}
	return nil
}

// ValidateMaxLength checks that value has at most maxLen characters.
func ValidateMaxLength(field, value string, maxLen int) error {
	length := utf8.RuneCountInString(value)
	if length > maxLen {
		return fmt.Errorf("%s exceeds maximum length of %d characters (got %d)", field, maxLen, length)
	}
	return nil
}

// ValidateParam performs the shape checks applied to every free parameter
// parsed from user input.
func ValidateParam(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("parameter name cannot be empty")
	}
	if err := ValidateMaxLength("parameter name", name, MaxParamNameLength); err != nil {
		return err
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("parameter name %q must not contain whitespace", name)
	}
	if len(value) > MaxParamValueLength {
		return fmt.Errorf("value of %s exceeds maximum size of %d bytes (got %d)", name, MaxParamValueLength, len(value))
	}
	return nil
}

// ParseParam splits a "name=value" argument. A missing "=" is an error so
// that an absent value is never sent as an empty one.
func ParseParam(arg string) (string, string, error) {
	name, value, ok := strings.Cut(arg, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid parameter %q: expected name=value", arg)
	}
	name = strings.TrimSpace(name)
	if err := ValidateParam(name, value); err != nil {
		return "", "", err
	}
	return name, value, nil
}
