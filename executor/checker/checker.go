// Package checker compares program output with the expected answer.
package checker

import "strings"

var separators = strings.NewReplacer(
	"\r", "",
	"[", " ",
	"]", " ",
	"(", " ",
	")", " ",
	",", " ",
)

// Normalize reduces s to its canonical token form: carriage returns are
// dropped, brackets and commas become separators and every whitespace run
// collapses to a single space. Separators are never deleted outright, so
// "12" and "1 2" stay distinct.
func Normalize(s string) string {
	return strings.Join(strings.Fields(separators.Replace(s)), " ")
}

// Equal reports whether actual and expected normalize to the same string.
func Equal(actual, expected string) bool {
	return Normalize(actual) == Normalize(expected)
}
