package locale

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrActiveLocales indicates the context was not built with exactly two distinct locales.
	ErrActiveLocales = errors.New("locale: exactly two distinct active locales are required")
	// ErrUnknownLocale indicates a locale that is not one of the active pair.
	ErrUnknownLocale = errors.New("locale: locale is not active")
)

// Context carries the locale currently in effect for a caller and the pair of
// active locales. It is passed explicitly to every resolver call; nothing in
// this module reads a process-wide current locale.
type Context struct {
	Current string
	Active  [2]string
}

// New builds a Context. active must list exactly two distinct locales and a
// non-empty current must be one of them.
func New(current string, active ...string) (Context, error) {
	if len(active) != 2 {
		return Context{}, ErrActiveLocales
	}
	first, second := Normalize(active[0]), Normalize(active[1])
	if first == "" || second == "" || first == second {
		return Context{}, ErrActiveLocales
	}
	lc := Context{
		Current: Normalize(current),
		Active:  [2]string{first, second},
	}
	if lc.Current != "" && !lc.IsActive(lc.Current) {
		return Context{}, fmt.Errorf("%w: %q", ErrUnknownLocale, current)
	}
	return lc, nil
}

// MustNew is New for static setup code.
func MustNew(current string, active ...string) Context {
	lc, err := New(current, active...)
	if err != nil {
		panic(err)
	}
	return lc
}

// WithCurrent returns a copy of the context using current as the locale in effect.
func (c Context) WithCurrent(current string) Context {
	c.Current = Normalize(current)
	return c
}

// IsActive reports whether code is one of the two active locales.
func (c Context) IsActive(code string) bool {
	code = Normalize(code)
	return code != "" && (code == c.Active[0] || code == c.Active[1])
}

// Default returns the first active locale.
func (c Context) Default() string {
	return c.Active[0]
}

// AlternateLocale returns the active locale that is not recordLocale. A blank
// recordLocale is treated as the default locale.
func (c Context) AlternateLocale(recordLocale string) (string, error) {
	code := Normalize(recordLocale)
	if code == "" {
		code = c.Active[0]
	}
	switch code {
	case c.Active[0]:
		return c.Active[1], nil
	case c.Active[1]:
		return c.Active[0], nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLocale, recordLocale)
	}
}

// Native reports whether a viewer in this context reads recordLocale natively:
// no current locale, a record without a locale, or matching locales.
func (c Context) Native(recordLocale string) bool {
	record := Normalize(recordLocale)
	return c.Current == "" || record == "" || c.Current == record
}

// Normalize trims and lower-cases a locale code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
