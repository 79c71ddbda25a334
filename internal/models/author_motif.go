package models

// AuthorMotif is the per-author audio signature derived from a login.
type AuthorMotif struct {
	Login         string    `json:"login" yaml:"login"`
	PanPosition   float64   `json:"panPosition" yaml:"panPosition"`
	RhythmPattern []float64 `json:"rhythmPattern" yaml:"rhythmPattern"`
	Color         string    `json:"color" yaml:"color"`
}
