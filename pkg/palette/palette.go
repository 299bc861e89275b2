// Package palette maps categorical field values to fixed map colors.
package palette

import (
	"sort"

	"github.com/umputun/breakmap/pkg/domain"
)

var (
	// Red is used for AC (asbestos cement) breaks
	Red = domain.Color{255, 0, 0}
	// Green is used for ACG breaks
	Green = domain.Color{0, 255, 0}
	// Blue is the fallback for everything else
	Blue = domain.Color{0, 0, 255}
)

var defaultPalette = New(map[string]domain.Color{"AC": Red, "ACG": Green}, Blue)

// Palette is a static lookup table from value to color with a fallback
type Palette struct {
	mapping  map[string]domain.Color
	fallback domain.Color
}

// Entry is one legend line
type Entry struct {
	Value string       `json:"value"`
	Color domain.Color `json:"color"`
}

// New makes a palette from mapping and fallback color. The mapping is copied.
func New(mapping map[string]domain.Color, fallback domain.Color) *Palette {
	m := make(map[string]domain.Color, len(mapping))
	for k, v := range mapping {
		m[k] = v
	}
	return &Palette{mapping: m, fallback: fallback}
}

// Default returns the built-in palette
func Default() *Palette {
	return defaultPalette
}

// Lookup returns color for the value, or the fallback color for unknown values
func Lookup(value string) domain.Color {
	return defaultPalette.Lookup(value)
}

// Lookup returns color for the value, or the fallback color for unknown values
func (p *Palette) Lookup(value string) domain.Color {
	if c, ok := p.mapping[value]; ok {
		return c
	}
	return p.fallback
}

// Fallback returns the color used for unknown values
func (p *Palette) Fallback() domain.Color {
	return p.fallback
}

// Legend returns known mappings sorted by value
func (p *Palette) Legend() []Entry {
	res := make([]Entry, 0, len(p.mapping))
	for k, v := range p.mapping {
		res = append(res, Entry{Value: k, Color: v})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Value < res[j].Value })
	return res
}
