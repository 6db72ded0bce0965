// Package cui validates Guatemalan national identity numbers (CUI).
//
// A CUI has 13 digits: an 8-digit serial, a check digit, a 2-digit
// department code and a 2-digit municipality code.  The same rules are
// used by the API boundary and authoritatively by the reservation engine.
package cui

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrEmpty        = errors.New("CUI is empty")
	ErrFormat       = errors.New("CUI must have 13 numeric digits")
	ErrDepartment   = errors.New("CUI department code is invalid")
	ErrMunicipality = errors.New("CUI municipality code is invalid")
	ErrCheckDigit   = errors.New("CUI check digit does not match")
)

// municipalities holds the highest municipality code per department
// (index = department-1).
var municipalities = [...]int{17, 8, 16, 16, 13, 14, 19, 8, 24, 21, 9, 30, 32, 21, 8, 17, 14, 5, 11, 11, 7, 17}

// Normalize strips every whitespace rune from id.
func Normalize(id string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, id)
}

// Validate returns nil when id is a well-formed CUI and one of the
// package errors otherwise.
func Validate(id string) error {
	s := Normalize(id)
	if s == "" {
		return ErrEmpty
	}
	if len(s) != 13 {
		return ErrFormat
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return ErrFormat
		}
	}

	dept := twoDigits(s[9:11])
	muni := twoDigits(s[11:13])
	if dept == 0 || dept > len(municipalities) {
		return ErrDepartment
	}
	if muni == 0 || muni > municipalities[dept-1] {
		return ErrMunicipality
	}

	total := 0
	for i := 0; i < 8; i++ {
		total += int(s[i]-'0') * (i + 2)
	}
	if total%11 != int(s[8]-'0') {
		return ErrCheckDigit
	}
	return nil
}

// Valid reports whether id passes Validate.
func Valid(id string) bool { return Validate(id) == nil }

func twoDigits(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
