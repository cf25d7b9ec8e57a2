package common

import (
	"fmt"
	"slices"
	"strings"

	"resumetailor/internal/errors"
	"resumetailor/internal/formatters"

	"github.com/google/uuid"
)

// ValidateOutputFormat accepts a format the formatter registry can render
// and, when allowed is non-empty, that config allows.
func ValidateOutputFormat(format string, allowed []string) error {
	supported := GetSupportedFormats(allowed)
	if slices.Contains(supported, format) {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format %q, use one of: %s", format, strings.Join(supported, ", ")), nil)
}

// GetSupportedFormats lists the renderable formats config allows, sorted
func GetSupportedFormats(allowed []string) []string {
	renderable := formatters.GlobalRegistry.GetSupportedFormats()
	if len(allowed) == 0 {
		return renderable
	}
	return slices.DeleteFunc(renderable, func(f string) bool {
		return !slices.Contains(allowed, f)
	})
}

// ValidateResultID accepts only canonical, hyphenated RFC 4122 UUIDs of
// versions 1 through 5, in either case.
func ValidateResultID(id string) error {
	invalid := errors.NewValidationError(errors.ErrCodeInvalidResultID,
		fmt.Sprintf("invalid result id: %q", id), nil)
	if len(id) != 36 {
		return invalid
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return invalid
	}
	if v := parsed.Version(); v < 1 || v > 5 {
		return invalid
	}
	if parsed.Variant() != uuid.RFC4122 {
		return invalid
	}
	return nil
}
