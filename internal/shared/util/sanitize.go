package util

import (
	"errors"
	"strings"
	"unicode"
)

var ErrInvalidFileName = errors.New("invalid file name")

// CleanName makes name safe for a storage key or a Content-Disposition
// header. Separators become underscores; quotes and control characters are
// dropped.
func CleanName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\':
			b.WriteByte('_')
		case r == '"' || unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// SanitizeFileName cleans name and rejects traversal attempts and names that
// clean to nothing.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := CleanName(name)
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// StoredName prefixes a sanitized name with id so repeated uploads of the
// same file never collide.
func StoredName(id, name string) string {
	return id + "_" + name
}

// OriginalName reverses StoredName.
func OriginalName(stored string) string {
	if _, rest, ok := strings.Cut(stored, "_"); ok && rest != "" {
		return rest
	}
	return stored
}
