package music

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commitsonic/internal/models"
)

func TestGetNoteName(t *testing.T) {
	tests := []struct {
		name        string
		root        string
		scale       models.Scale
		index       int
		octave      int
		expected    string
		expectedErr error
	}{
		{name: "root of major", root: "C", scale: models.ScaleMajor, index: 0, octave: 4, expected: "C4"},
		{name: "third of major", root: "C", scale: models.ScaleMajor, index: 2, octave: 4, expected: "E4"},
		{name: "third of minor", root: "C", scale: models.ScaleMinor, index: 2, octave: 3, expected: "D#3"},
		{name: "sixth of dorian", root: "C", scale: models.ScaleDorian, index: 5, octave: 3, expected: "A3"},
		{name: "wraps into next octave", root: "C", scale: models.ScaleMajor, index: 7, octave: 4, expected: "C5"},
		{name: "highest pitch index", root: "C", scale: models.ScaleMajor, index: 13, octave: 5, expected: "B6"},
		{name: "negative index wraps down", root: "C", scale: models.ScaleMajor, index: -1, octave: 4, expected: "B3"},
		{name: "negative full octave", root: "C", scale: models.ScaleMinor, index: -7, octave: 4, expected: "C3"},
		{name: "root overflow carries octave", root: "A", scale: models.ScaleMajor, index: 2, octave: 4, expected: "C#5"},
		{name: "sharp root", root: "F#", scale: models.ScaleMinor, index: 0, octave: 3, expected: "F#3"},
		{name: "flat root rejected", root: "Bb", scale: models.ScaleMajor, index: 0, octave: 4, expectedErr: ErrUnknownRoot},
		{name: "unknown root rejected", root: "H", scale: models.ScaleMajor, index: 0, octave: 4, expectedErr: ErrUnknownRoot},
		{name: "unknown scale rejected", root: "C", scale: models.Scale("lydian"), index: 0, octave: 4, expectedErr: ErrUnknownScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, err := GetNoteName(tt.root, tt.scale, tt.index, tt.octave)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, note)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, note)
		})
	}
}

func TestIntervalsReturnsCopy(t *testing.T) {
	intervals, ok := Intervals(models.ScaleMajor)
	require.True(t, ok)
	intervals[0] = 99

	again, _ := Intervals(models.ScaleMajor)
	assert.Equal(t, []int{0, 2, 4, 5, 7, 9, 11}, again)

	_, ok = Intervals(models.Scale("phrygian"))
	assert.False(t, ok)
}
