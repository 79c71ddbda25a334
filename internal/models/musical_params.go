package models

import (
	"database/sql/driver"
	"encoding/json"
)

// Instrument names the synth voice a commit is played on.
type Instrument string

const (
	InstrumentSynth         Instrument = "Synth"
	InstrumentAMSynth       Instrument = "AMSynth"
	InstrumentFMSynth       Instrument = "FMSynth"
	InstrumentMonoSynth     Instrument = "MonoSynth"
	InstrumentDuoSynth      Instrument = "DuoSynth"
	InstrumentPluckSynth    Instrument = "PluckSynth"
	InstrumentMembraneSynth Instrument = "MembraneSynth"
	InstrumentMetalSynth    Instrument = "MetalSynth"
)

// Scale names one of the recognised interval sets.
type Scale string

const (
	ScaleMajor  Scale = "major"
	ScaleMinor  Scale = "minor"
	ScaleDorian Scale = "dorian"
)

// MusicalParams is the audio-parameter set derived from a commit.
type MusicalParams struct {
	Instrument Instrument `json:"instrument" bson:"instrument"`
	Note       string     `json:"note" bson:"note"`
	Duration   float64    `json:"duration" bson:"duration"`
	Velocity   float64    `json:"velocity" bson:"velocity"`
	Octave     int        `json:"octave" bson:"octave"`
	Scale      Scale      `json:"scale" bson:"scale"`
	Pan        float64    `json:"pan" bson:"pan"`
	Effects    Effects    `json:"effects" bson:"effects"`
}

// Effects holds the send levels in [0,1].
type Effects struct {
	Reverb float64 `json:"reverb" bson:"reverb"`
	Delay  float64 `json:"delay" bson:"delay"`
}

// Value stores the params as a JSON document.
func (p MusicalParams) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan loads params from a JSON column.
func (p *MusicalParams) Scan(src any) error {
	return scanJSON(src, p)
}
