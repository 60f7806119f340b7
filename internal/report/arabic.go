// Package report composes the Arabic accident report PDF.
package report

import (
	"unicode"

	"github.com/abdullahdiaa/garabic"
)

// ar prepares a string for PDF rendering. Arabic text is reshaped into its
// joined presentation forms and reordered for the left-to-right visual
// model the PDF library assumes. Strings without Arabic letters (numbers,
// plate codes, Latin filenames) pass through untouched.
func ar(s string) string {
	if !containsArabic(s) {
		return s
	}
	return garabic.Shape(s)
}

func containsArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}
