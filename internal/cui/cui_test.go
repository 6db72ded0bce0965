package cui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want error
	}{
		{"valid department 01", "2990279290101", nil},
		{"valid with spaces", "2990 27929 0101", nil},
		{"valid highest department", "4051234502201", nil},
		{"valid department 18 upper bound", "1111111101805", nil},
		{"empty", "", ErrEmpty},
		{"only whitespace", "   ", ErrEmpty},
		{"too short", "299027929010", ErrFormat},
		{"too long", "29902792901011", ErrFormat},
		{"non digit", "29902792901A1", ErrFormat},
		{"all zeros", "0000000000000", ErrDepartment},
		{"department above 22", "2990279292301", ErrDepartment},
		{"municipality zero", "2990279290100", ErrMunicipality},
		{"municipality above department max", "1111111101806", ErrMunicipality},
		{"bad check digit", "2990279230101", ErrCheckDigit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tc.in), tc.want)
			assert.Equal(t, tc.want == nil, Valid(tc.in))
		})
	}
}

func TestValidate_SerialTamperingFlipsCheck(t *testing.T) {
	const valid = "2990279290101"
	flipped := 0
	total := 0
	for pos := 0; pos < 8; pos++ {
		for d := byte('0'); d <= '9'; d++ {
			if valid[pos] == d {
				continue
			}
			b := []byte(valid)
			b[pos] = d
			total++
			if Validate(string(b)) == ErrCheckDigit {
				flipped++
			}
		}
	}
	// weights 2..9 are coprime with 11, so any single-digit change moves the sum mod 11
	assert.Equal(t, total, flipped)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "2990279290101", Normalize(" 2990\t27929\n0101 "))
}
