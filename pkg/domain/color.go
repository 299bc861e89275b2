package domain

import "fmt"

// Color is an RGB triple
type Color [3]uint8

// Hex returns color in #rrggbb form
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
