package render

import (
	"strings"
	"unicode"
)

// ClassName makes a vocabulary local name a valid type identifier:
// a leading "3" becomes "Three" and the first letter is upper-cased.
func ClassName(s string) string {
	if strings.HasPrefix(s, "3") {
		s = "Three" + s[1:]
	}
	return UpperFirst(s)
}

// UpperFirst upper-cases the first letter.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Acronyms stay together ("HTTPSConnection" -> "https_connection").
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !prevUpper || nextLower {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// commonInitialisms are upper-cased whole in exported identifiers.
var commonInitialisms = map[string]bool{
	"ID":   true,
	"URL":  true,
	"URI":  true,
	"UUID": true,
	"JSON": true,
	"HTML": true,
	"API":  true,
}

// ExportedName converts a field name into an exported identifier following
// Go initialism conventions ("id" -> "ID", "sampleUrl" -> "SampleURL").
// Characters that cannot appear in identifiers are dropped.
func ExportedName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, s)
	s = ClassName(s)

	words := strings.Split(ToSnakeCase(s), "_")
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		if upper := strings.ToUpper(w); commonInitialisms[upper] {
			b.WriteString(upper)
			continue
		}
		b.WriteString(UpperFirst(w))
	}
	return b.String()
}
