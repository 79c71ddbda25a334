package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CIStatus is the build outcome attached to a commit.
type CIStatus string

const (
	CIStatusPass    CIStatus = "pass"
	CIStatusFail    CIStatus = "fail"
	CIStatusPending CIStatus = "pending"
	CIStatusUnknown CIStatus = "unknown"
)

// Commit is one push/commit event enriched with its musical parameters.
type Commit struct {
	ID              string          `json:"id" bson:"id" db:"id"`
	RepoID          string          `json:"repoId" bson:"repoId" db:"repo_id"`
	Timestamp       time.Time       `json:"timestamp" bson:"timestamp" db:"timestamp"`
	Author          string          `json:"author" bson:"author" db:"author"`
	Message         string          `json:"message" bson:"message" db:"message"`
	Stats           CommitStats     `json:"stats" bson:"stats" db:"stats"`
	PrimaryLanguage string          `json:"primaryLanguage" bson:"primaryLanguage" db:"primary_language"`
	Languages       LanguageWeights `json:"languages" bson:"languages" db:"languages"`
	CIStatus        CIStatus        `json:"ciStatus" bson:"ciStatus" db:"ci_status"`
	MusicalParams   MusicalParams   `json:"musicalParams" bson:"musicalParams" db:"musical_params"`
}

// CommitStats counts the files a commit touched.
type CommitStats struct {
	Additions    int `json:"additions" bson:"additions"`
	Deletions    int `json:"deletions" bson:"deletions"`
	FilesChanged int `json:"filesChanged" bson:"filesChanged"`
}

// Value stores the stats as a JSON document.
func (s CommitStats) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan loads stats from a JSON column.
func (s *CommitStats) Scan(src any) error {
	return scanJSON(src, s)
}

// LanguageWeight is one entry of a commit's language histogram.
type LanguageWeight struct {
	Label  string `json:"label" bson:"label"`
	Weight int    `json:"weight" bson:"weight"`
}

// LanguageWeights is a label -> weight mapping that keeps first-seen order.
// It encodes to JSON as an object whose keys follow that order.
type LanguageWeights []LanguageWeight

// Get returns the weight recorded for label.
func (lw LanguageWeights) Get(label string) (int, bool) {
	for _, w := range lw {
		if w.Label == label {
			return w.Weight, true
		}
	}
	return 0, false
}

// Add increments the weight of label, appending it when first seen.
func (lw LanguageWeights) Add(label string, weight int) LanguageWeights {
	for i := range lw {
		if lw[i].Label == label {
			lw[i].Weight += weight
			return lw
		}
	}
	return append(lw, LanguageWeight{Label: label, Weight: weight})
}

func (lw LanguageWeights) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, w := range lw {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(w.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", w.Weight)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (lw *LanguageWeights) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*lw = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("languages: expected JSON object")
	}

	out := LanguageWeights{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return errors.New("languages: expected string key")
		}
		var weight int
		if err := dec.Decode(&weight); err != nil {
			return fmt.Errorf("languages: weight for %q: %w", label, err)
		}
		out = out.Add(label, weight)
	}

	*lw = out
	return nil
}

// Value stores the histogram as an ordered JSON object.
func (lw LanguageWeights) Value() (driver.Value, error) {
	return lw.MarshalJSON()
}

// Scan loads the histogram from a JSON column.
func (lw *LanguageWeights) Scan(src any) error {
	return scanJSON(src, lw)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}
