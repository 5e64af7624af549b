package routename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain_latin", "30", "30"},
		{"trims_and_uppercases", "  a1 ", "A1"},
		{"inner_whitespace", "6 A", "6A"},
		{"greek_letters", "Θ1", "TH1"},
		{"lowercase_greek", "ψ2", "PS2"},
		{"rho_collapses_to_p", "Ρ5", "P5"},
		{"chi_and_xi_collide", "Χ9", "X9"},
		{"mixed_script", " λεμ 7 ", "LEM7"},
		{"passthrough_punctuation", "N-12", "N-12"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Canonical(tc.input))
		})
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	inputs := []string{"", "30", "  a1 ", "Θ1", "ψ2", "λεμ 7", "Ω Ω", "N-12"}
	for _, in := range inputs {
		once := Canonical(in)
		assert.Equal(t, once, Canonical(once), "input %q", in)
	}
}

func TestCanonicalCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, Canonical("A1"), Canonical("  a1 "))
	assert.Equal(t, Canonical("ΛΕΜ7"), Canonical("λεμ 7"))
}
