// Package music turns commit metadata into deterministic musical parameters.
package music

import (
	"fmt"
	"unicode/utf16"
)

const hashSeed uint32 = 5381

// rhythmValues are the note lengths a rhythm pattern draws from, in beats.
var rhythmValues = [3]float64{0.5, 1, 1.5}

// Hash is the djb2 string hash over UTF-16 code units, wrapping at 2^32.
// Hash("") is 5381.
func Hash(s string) uint32 {
	h := hashSeed
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) + h + uint32(unit)
	}
	return h
}

// HashToRange maps Hash(s) linearly onto [min, max].
func HashToRange(s string, min, max float64) float64 {
	normalized := float64(Hash(s)) / float64(0xFFFFFFFF)
	return min + normalized*(max-min)
}

// HashToColor renders the low 24 bits of Hash(s) as #rrggbb.
func HashToColor(s string) string {
	return fmt.Sprintf("#%06x", Hash(s)&0xFFFFFF)
}

// HashToRhythmPattern derives a pattern of 3 to 6 note lengths from s.
func HashToRhythmPattern(s string) []float64 {
	h := Hash(s)
	length := 3 + int(h%4)

	pattern := make([]float64, length)
	seed := uint64(h)
	for i := range pattern {
		seed = (seed*1103515245 + 12345) % (1 << 31)
		pattern[i] = rhythmValues[seed%3]
	}
	return pattern
}
