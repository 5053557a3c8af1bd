// Package i18n negotiates the visitor's locale and serves translation
// bundles fetched from the backend.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported BCP 47 locale tag.
type Locale string

const (
	EnUS Locale = "en-US"
	LtLT Locale = "lt-LT"

	// Default is used when nothing else resolves and as translation fallback.
	Default = EnUS
)

var supported = []Locale{EnUS, LtLT}

var displayNames = map[Locale]string{
	EnUS: "English",
	LtLT: "Lietuvių",
}

var shortNames = map[Locale]string{
	EnUS: "EN",
	LtLT: "LT",
}

var matcher = language.NewMatcher([]language.Tag{
	language.MustParse(string(EnUS)),
	language.MustParse(string(LtLT)),
})

// Supported returns the supported locales, default first.
func Supported() []Locale {
	return append([]Locale(nil), supported...)
}

// IsSupported reports whether s is exactly one of the supported tags.
func IsSupported(s string) bool {
	for _, l := range supported {
		if string(l) == s {
			return true
		}
	}
	return false
}

// DisplayName returns the native name of l, e.g. "Lietuvių".
func (l Locale) DisplayName() string {
	if name, ok := displayNames[l]; ok {
		return name
	}
	return string(l)
}

// ShortName returns the two-letter label of l, e.g. "LT".
func (l Locale) ShortName() string {
	if name, ok := shortNames[l]; ok {
		return name
	}
	return strings.ToUpper(string(l))
}

// MatchLocale maps a browser language preference, either a single tag such
// as "lt" or a full Accept-Language header, to the nearest supported
// locale. It reports false when no supported locale is a reasonable match.
func MatchLocale(preference string) (Locale, bool) {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return "", false
	}
	return supported[index], true
}
