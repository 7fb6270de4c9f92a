package catalog

import (
	"slices"
	"strings"

	"github.com/matzehuels/brickyard/pkg/errors"
)

// Color is a palette entry in "#RRGGBB" form. Its string is the persisted value.
type Color string

// Palette colours.
const (
	Red       Color = "#E3000B"
	Blue      Color = "#0055BF"
	Yellow    Color = "#F2CD37"
	Green     Color = "#237841"
	White     Color = "#FFFFFF"
	Black     Color = "#05131D"
	Orange    Color = "#D67240"
	Purple    Color = "#81007B"
	Brown     Color = "#582A12"
	LightGray Color = "#A0A5A9"
	DarkGray  Color = "#6C6E68"
	Teal      Color = "#008F9B"
)

// DefaultColor is the colour selected when a session starts.
const DefaultColor = Red

// Colors lists the palette in display order.
var Colors = []Color{
	Red, Blue, Yellow, Green,
	White, Black, Orange, Purple,
	Brown, LightGray, DarkGray, Teal,
}

var colorNames = map[Color]string{
	Red:       "red",
	Blue:      "blue",
	Yellow:    "yellow",
	Green:     "green",
	White:     "white",
	Black:     "black",
	Orange:    "orange",
	Purple:    "purple",
	Brown:     "brown",
	LightGray: "light gray",
	DarkGray:  "dark gray",
	Teal:      "teal",
}

// Name returns the human readable colour name, or the hex value for
// colours outside the palette.
func (c Color) Name() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return string(c)
}

// Valid reports whether c is a palette colour.
func (c Color) Valid() bool {
	_, ok := colorNames[c]
	return ok
}

// ParseColor accepts a palette hex value (any case) or a colour name.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToUpper(strings.TrimSpace(s)))
	if c.Valid() {
		return c, nil
	}
	name := strings.ToLower(strings.TrimSpace(s))
	for col, n := range colorNames {
		if n == name || strings.ReplaceAll(n, " ", "-") == name {
			return col, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidColor, "unknown color: %q", s)
}

// NextColor returns the palette entry after c, wrapping around.
func NextColor(c Color) Color {
	i := slices.Index(Colors, c)
	return Colors[(i+1)%len(Colors)]
}
