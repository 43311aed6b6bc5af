package domain

import (
	"math/rand/v2"
	"strings"
)

// Color is a named embed color.
type Color string

// ColorRandom picks a new color every time the display is rendered.
const ColorRandom Color = "Random"

// DefaultColor is the schema default for new queues.
const DefaultColor = ColorRandom

var colorValues = map[Color]int{
	"Default":           0x000000,
	"White":             0xffffff,
	"Aqua":              0x1abc9c,
	"Green":             0x57f287,
	"Blue":              0x3498db,
	"Yellow":            0xfee75c,
	"Purple":            0x9b59b6,
	"LuminousVividPink": 0xe91e63,
	"Fuchsia":           0xeb459e,
	"Gold":              0xf1c40f,
	"Orange":            0xe67e22,
	"Red":               0xed4245,
	"Grey":              0x95a5a6,
	"Navy":              0x34495e,
	"DarkAqua":          0x11806a,
	"DarkGreen":         0x1f8b4c,
	"DarkBlue":          0x206694,
	"DarkPurple":        0x71368a,
	"DarkVividPink":     0xad1457,
	"DarkGold":          0xc27c0e,
	"DarkOrange":        0xa84300,
	"DarkRed":           0x992d22,
	"DarkGrey":          0x979c9f,
	"DarkerGrey":        0x7f8c8d,
	"LightGrey":         0xbcc0c0,
	"DarkNavy":          0x2c3e50,
	"Blurple":           0x5865f2,
	"Greyple":           0x99aab5,
	"DarkButNotBlack":   0x2c2f33,
	"NotQuiteBlack":     0x23272a,
}

var colorsByKey = func() map[string]Color {
	m := make(map[string]Color, len(colorValues)+1)
	for c := range colorValues {
		m[colorKey(string(c))] = c
	}
	m[colorKey(string(ColorRandom))] = ColorRandom
	return m
}()

// colorKey folds legacy spellings ("DARK_BLUE", "dark blue") onto one key.
func colorKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(s)
}

// LookupColor resolves a color by name, ignoring case and separators.
func LookupColor(name string) (Color, bool) {
	c, ok := colorsByKey[colorKey(name)]
	return c, ok
}

// ColorOrDefault resolves name or falls back to DefaultColor.
func ColorOrDefault(name string) Color {
	if c, ok := LookupColor(name); ok {
		return c
	}
	return DefaultColor
}

// Value returns the RGB value of the color. Random yields a fresh value each call.
func (c Color) Value() int {
	if v, ok := colorValues[c]; ok {
		return v
	}
	return rand.IntN(0xffffff + 1)
}
