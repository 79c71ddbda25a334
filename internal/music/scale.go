package music

import (
	"errors"
	"fmt"

	"commitsonic/internal/models"
)

var (
	ErrUnknownRoot  = errors.New("unknown root note")
	ErrUnknownScale = errors.New("unknown scale")
)

// NoteNames are the twelve pitch classes, spelled with sharps.
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var scaleIntervals = map[models.Scale][]int{
	models.ScaleMajor:  {0, 2, 4, 5, 7, 9, 11},
	models.ScaleMinor:  {0, 2, 3, 5, 7, 8, 10},
	models.ScaleDorian: {0, 2, 3, 5, 7, 9, 10},
}

// Intervals returns the semitone offsets of scale.
func Intervals(scale models.Scale) ([]int, bool) {
	intervals, ok := scaleIntervals[scale]
	if !ok {
		return nil, false
	}
	return append([]int(nil), intervals...), true
}

// NoteIndex returns the pitch-class index of a note name, or -1.
func NoteIndex(name string) int {
	for i, n := range NoteNames {
		if n == name {
			return i
		}
	}
	return -1
}

// GetNoteName resolves the scaleIndex-th degree of scale above root in the
// given octave. Indexes outside the scale wrap into neighbouring octaves.
func GetNoteName(root string, scale models.Scale, scaleIndex, octave int) (string, error) {
	rootIdx := NoteIndex(root)
	if rootIdx < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoot, root)
	}

	intervals, ok := scaleIntervals[scale]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScale, scale)
	}

	n := len(intervals)
	octaveOffset := floorDiv(scaleIndex, n)
	position := scaleIndex - octaveOffset*n

	semitones := rootIdx + intervals[position]
	pitchClass := semitones % 12
	octaveCarry := semitones / 12

	return fmt.Sprintf("%s%d", NoteNames[pitchClass], octave+octaveOffset+octaveCarry), nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
