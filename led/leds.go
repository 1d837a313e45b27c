// Package led implements the pixel buffer of the LED matrix and the encoder
// that serializes it into the strip's wire format.
package led

// NumCells is the number of cells in the 5x5 matrix.
const NumCells = 25

// RGBColor is a color in logical R, G, B channel order.
type RGBColor [3]uint8

// Black is the color of an unlit cell.
var Black = RGBColor{}

// RGB creates a new RGBColor.
func RGB(r, g, b uint8) RGBColor {
	return RGBColor{r, g, b}
}

// LEDs describes a strip of LEDs. It is a preallocated slice of RGBColor,
// indexed by cell.
type LEDs []RGBColor

// NewLEDs creates a new strip of LEDs. Colors are initialized to black
// (off).
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// Set sets the color of the LED at the given index.
func (l LEDs) Set(i int, c RGBColor) {
	l[i] = c
}

// Clear turns every LED off.
func (l LEDs) Clear() {
	for i := range l {
		l[i] = Black
	}
}

// AppendGRB appends the wire representation of the strip to dst and returns
// the extended slice. Each LED is written as three bytes in green, red, blue
// order, which is the order the strip shifts them in.
func AppendGRB(dst []byte, l LEDs) []byte {
	for _, c := range l {
		dst = append(dst, c[1], c[0], c[2])
	}
	return dst
}
