// Package routename builds canonical keys for matching route labels
// across the static feed and the live arrivals page, which render the
// same route in different scripts, casing and spacing.
package routename

import "strings"

// Uppercase Greek letters to Latin replacements. Note that Ρ maps to
// "P" (colliding with Π) and Ξ and Χ both map to "X". This mirrors
// how the live feed renders these letters; see the notes in
// DESIGN.md before changing it.
var greekToLatin = map[rune]string{
	'Α': "A", 'Β': "B", 'Γ': "G", 'Δ': "D", 'Ε': "E", 'Ζ': "Z", 'Η': "H",
	'Θ': "TH", 'Ι': "I", 'Κ': "K", 'Λ': "L", 'Μ': "M", 'Ν': "N", 'Ξ': "X",
	'Ο': "O", 'Π': "P", 'Ρ': "P", 'Σ': "S", 'Τ': "T", 'Υ': "Y", 'Φ': "F",
	'Χ': "X", 'Ψ': "PS", 'Ω': "O",
}

// Canonical maps a free-text route label to its matching key: trim,
// uppercase, drop whitespace, transliterate Greek uppercase letters.
// Characters outside the table pass through unchanged. Empty input
// yields the empty string. Canonical never fails, so it is safe to
// use as a join key.
func Canonical(name string) string {
	if name == "" {
		return ""
	}

	upper := strings.ToUpper(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if latin, ok := greekToLatin[r]; ok {
			b.WriteString(latin)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
