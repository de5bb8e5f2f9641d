package contact

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxNameLength    = 100
	maxEmailLength   = 254
	maxMessageLength = 2000
)

var (
	// Letters, whitespace, hyphens and apostrophes only.
	namePattern = regexp.MustCompile(`^[A-Za-z\s\-']+$`)
	// Deliberately stricter than RFC 5322: requires a TLD-shaped domain so
	// throwaway values like "a@b" are rejected.
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

// ValidationResult reports whether a submission passed validation and which
// rules it broke. The error list is logged server-side only, never returned to
// the client.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate checks the required fields of a submission after trimming.
// Required-field-empty errors preempt everything else: length and pattern
// rules are never run against empty strings. All remaining errors are
// collected rather than short-circuited. Pure and deterministic.
func Validate(name, email, message string) ValidationResult {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)

	var errs []string
	for _, f := range []struct {
		label string
		value string
	}{
		{"Name", name},
		{"Email", email},
		{"Message", message},
	} {
		if f.value == "" {
			errs = append(errs, fmt.Sprintf("%s is required", f.label))
		}
	}
	if len(errs) > 0 {
		return ValidationResult{Valid: false, Errors: errs}
	}

	if len(name) > maxNameLength {
		errs = append(errs, fmt.Sprintf("Name must be %d characters or fewer", maxNameLength))
	}
	if !namePattern.MatchString(name) {
		errs = append(errs, "Name contains invalid characters")
	}
	if len(email) > maxEmailLength {
		errs = append(errs, fmt.Sprintf("Email must be %d characters or fewer", maxEmailLength))
	}
	if !emailPattern.MatchString(email) {
		errs = append(errs, "Email address is invalid")
	}
	if len(message) > maxMessageLength {
		errs = append(errs, fmt.Sprintf("Message must be %d characters or fewer", maxMessageLength))
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
