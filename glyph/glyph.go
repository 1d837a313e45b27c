// Package glyph maps decimal digits to the cells of the 5x5 matrix that draw
// them. Cell 0 is the bottom-right LED and cell 24 the top-left one; the
// strip snakes between rows.
package glyph

import (
	"errors"
	"fmt"

	"libdb.so/digitglow/led"
)

// Digit is a decimal digit. Only 0 through 9 are valid.
type Digit uint8

// MaxDigit is the largest displayable digit.
const MaxDigit Digit = 9

// Valid returns true if d is within 0 through 9.
func (d Digit) Valid() bool {
	return d <= MaxDigit
}

// ErrInvalidDigit is returned by Lookup for digits outside 0 through 9.
var ErrInvalidDigit = errors.New("invalid digit")

// Glyph is the set of cells and the color that represent one digit.
type Glyph struct {
	Cells []int
	Color led.RGBColor
}

// Draw writes the glyph color into every one of its cells. Cells outside the
// glyph are left untouched.
func (g Glyph) Draw(leds led.LEDs) {
	for _, i := range g.Cells {
		leds.Set(i, g.Color)
	}
}

var table = [MaxDigit + 1]Glyph{
	0: {[]int{1, 2, 3, 4, 5, 8, 11, 14, 15, 18, 21, 22, 23, 24}, led.RGB(255, 255, 255)},
	1: {[]int{2, 7, 12, 14, 16, 17, 22}, led.RGB(255, 0, 0)},
	2: {[]int{1, 2, 3, 4, 5, 11, 12, 13, 14, 18, 21, 22, 23, 24}, led.RGB(255, 127, 0)},
	3: {[]int{1, 2, 3, 4, 8, 11, 12, 13, 14, 18, 21, 22, 23, 24}, led.RGB(169, 169, 169)},
	4: {[]int{1, 8, 11, 12, 13, 14, 15, 18, 21, 24}, led.RGB(0, 255, 0)},
	5: {[]int{1, 2, 3, 4, 8, 11, 12, 13, 14, 15, 21, 22, 23, 24}, led.RGB(0, 0, 255)},
	6: {[]int{1, 2, 3, 4, 5, 8, 11, 12, 13, 14, 15, 21, 22, 23, 24}, led.RGB(255, 140, 0)},
	7: {[]int{1, 8, 11, 14, 15, 18, 21, 22, 23, 24}, led.RGB(139, 0, 255)},
	8: {[]int{1, 2, 3, 4, 5, 8, 11, 12, 13, 14, 15, 18, 21, 22, 23, 24}, led.RGB(139, 69, 19)},
	9: {[]int{1, 8, 11, 12, 13, 14, 15, 18, 21, 22, 23, 24}, led.RGB(255, 20, 147)},
}

// For returns the glyph for the given digit. It panics if the digit is
// invalid; use Lookup for unchecked input.
func For(d Digit) Glyph {
	g, err := Lookup(d)
	if err != nil {
		panic(err.Error())
	}
	return g
}

// Lookup returns the glyph for the given digit, or ErrInvalidDigit.
// The returned cell slice is a copy of the table entry.
func Lookup(d Digit) (Glyph, error) {
	if !d.Valid() {
		return Glyph{}, fmt.Errorf("%w: %d", ErrInvalidDigit, d)
	}
	g := table[d]
	g.Cells = append([]int(nil), g.Cells...)
	return g, nil
}
