package music

import "commitsonic/internal/models"

// DefaultInstrument plays any language without an entry in the table.
const DefaultInstrument = models.InstrumentSynth

var instrumentByLanguage = map[string]models.Instrument{
	"Python":     models.InstrumentAMSynth,
	"JavaScript": models.InstrumentFMSynth,
	"TypeScript": models.InstrumentFMSynth,
	"Go":         models.InstrumentMonoSynth,
	"Rust":       models.InstrumentMetalSynth,
	"C":          models.InstrumentMetalSynth,
	"C++":        models.InstrumentMetalSynth,
	"Java":       models.InstrumentDuoSynth,
	"Kotlin":     models.InstrumentDuoSynth,
	"C#":         models.InstrumentDuoSynth,
	"Ruby":       models.InstrumentPluckSynth,
	"PHP":        models.InstrumentPluckSynth,
	"Swift":      models.InstrumentPluckSynth,
	"Shell":      models.InstrumentMembraneSynth,
	"Dockerfile": models.InstrumentMembraneSynth,
}

// Instrument returns the voice for a language label.
func Instrument(language string) models.Instrument {
	if inst, ok := instrumentByLanguage[language]; ok {
		return inst
	}
	return DefaultInstrument
}
