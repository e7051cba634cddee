package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateOutputName validates the file name of an output artifact.
// It must be a plain base name: the artifact is always written into the
// configured output directory and never elsewhere.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 255 bytes
//   - No control characters or null bytes
//   - No path separators and no "." or ".." names
//   - No hidden files (a leading dot is reserved for staging files)
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeConfiguration, "output name cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeConfiguration, "output name too long (max 255 bytes)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeConfiguration, "output name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeConfiguration, "output name cannot contain path separators: %q", name)
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeConfiguration, "output name cannot start with a dot: %q", name)
	}

	return nil
}

// counterNameRegex matches names usable as a redis key suffix, a mongo
// document id and a SQL row key alike.
var counterNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ValidateCounterName validates the name under which a counter is stored
// in a shared backend.
func ValidateCounterName(name string) error {
	if name == "" {
		return New(ErrCodeConfiguration, "counter name cannot be empty")
	}
	if !counterNameRegex.MatchString(name) {
		return New(ErrCodeConfiguration, "invalid counter name: %q", name)
	}
	return nil
}

// sqlTableRegex matches unquoted SQL identifiers, optionally schema-qualified.
var sqlTableRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateTableName validates a SQL table name before it is interpolated
// into a statement. Placeholders cannot stand in for identifiers.
func ValidateTableName(name string) error {
	if !sqlTableRegex.MatchString(name) {
		return New(ErrCodeConfiguration, "invalid table name: %q", name)
	}
	return nil
}
