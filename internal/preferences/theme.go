package preferences

import (
	"errors"
	"fmt"
	"strings"
)

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ErrInvalidTheme = errors.New("theme must be light or dark")

// ParseTheme accepts light or dark, case-insensitively.
func ParseTheme(raw string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, raw)
	}
}

// Toggle returns the other theme. Unset counts as light.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// OrDefault maps an unset theme to light.
func (t Theme) OrDefault() Theme {
	if t == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}
