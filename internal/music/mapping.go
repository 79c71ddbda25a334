package music

import (
	"math"
	"strings"
	"time"

	"commitsonic/internal/models"
)

const (
	rootNote         = "C"
	additionsPerStep = 30
	maxPitchIndex    = 13

	minDuration = 0.15
	maxDuration = 2.5

	minVelocity = 0.3
	maxVelocity = 1.0

	nightReverb = 0.6
	dayReverb   = 0.2
	mergeDelay  = 0.4
)

// CommitToMusicalParams derives the musical parameters of a commit from its
// own fields only. Pan is always 0; author panning is applied downstream.
func CommitToMusicalParams(c models.Commit) models.MusicalParams {
	scale := ScaleFor(c.CIStatus)
	octave := Octave(c.Stats.FilesChanged)

	// Root and scale come from fixed tables, so this cannot fail.
	note, _ := GetNoteName(rootNote, scale, PitchIndex(c.Stats.Additions), octave)

	return models.MusicalParams{
		Instrument: Instrument(c.PrimaryLanguage),
		Note:       note,
		Duration:   Duration(c.Stats.Additions),
		Velocity:   Velocity(c.Stats.FilesChanged),
		Octave:     octave,
		Scale:      scale,
		Pan:        0,
		Effects:    EffectsFor(c.Timestamp, c.Message),
	}
}

// PitchIndex climbs one scale degree per 30 added lines, capped at 13.
func PitchIndex(additions int) int {
	if additions < additionsPerStep {
		return 0
	}
	idx := additions / additionsPerStep
	if idx > maxPitchIndex {
		return maxPitchIndex
	}
	return idx
}

// Duration grows with additions, in seconds.
func Duration(additions int) float64 {
	return clamp(minDuration+float64(additions)/150, minDuration, maxDuration)
}

// Velocity grows by 0.1 for every file beyond the third.
func Velocity(filesChanged int) float64 {
	extra := filesChanged - 3
	if extra < 0 {
		extra = 0
	}
	return clamp(minVelocity+float64(extra)*0.1, minVelocity, maxVelocity)
}

// Octave is 3 for up to four files, 4 for five to eight, 5 beyond.
func Octave(filesChanged int) int {
	switch {
	case filesChanged <= 4:
		return 3
	case filesChanged <= 8:
		return 4
	default:
		return 5
	}
}

// ScaleFor maps a CI outcome to a scale.
func ScaleFor(status models.CIStatus) models.Scale {
	switch status {
	case models.CIStatusPass:
		return models.ScaleMajor
	case models.CIStatusFail:
		return models.ScaleMinor
	default:
		return models.ScaleDorian
	}
}

// EffectsFor adds reverb to late-night commits and delay to merges.
func EffectsFor(timestamp time.Time, message string) models.Effects {
	effects := models.Effects{Reverb: dayReverb}

	hour := timestamp.UTC().Hour()
	if hour >= 22 || hour < 6 {
		effects.Reverb = nightReverb
	}

	if strings.Contains(strings.ToLower(message), "merge") {
		effects.Delay = mergeDelay
	}

	return effects
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
