package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks failures a later pass can retry: network hiccups,
	// transfers that are not finished, titles with no usable candidate.
	ErrTransient = errors.New("transient failure")

	// ErrNotFound marks lookups that legitimately produced nothing.
	ErrNotFound = errors.New("not found")

	// ErrAuth marks rejected credentials on an external service.
	ErrAuth = errors.New("authentication error")

	// ErrExternalTool marks host tooling failures (transcoder, mount).
	// Retrying cannot fix a missing or broken binary, so these abort the
	// loop and leave the record for recovery after intervention.
	ErrExternalTool = errors.New("external tool error")

	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the whole loop invocation
// rather than defer the item to the next pass.
func IsFatal(err error) bool {
	return errors.Is(err, ErrExternalTool) || errors.Is(err, ErrConfiguration)
}

// IsTransient reports whether an error is a per-item skip that the next
// scheduled pass retries naturally.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return !IsFatal(err)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
