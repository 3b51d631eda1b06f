package race

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Compound is a tyre compound identifier as reported by the timing feed.
type Compound string

const (
	CompoundSoft         Compound = "SOFT"
	CompoundMedium       Compound = "MEDIUM"
	CompoundHard         Compound = "HARD"
	CompoundIntermediate Compound = "INTERMEDIATE"
	CompoundWet          Compound = "WET"
	CompoundTest         Compound = "TEST"
	CompoundUnknown      Compound = "UNKNOWN"
	// Names used before the 2019 simplification are passed through unchanged
	// (HYPERSOFT, ULTRASOFT, SUPERSOFT, SUPERHARD).
)

var upper = cases.Upper(language.Und)

// NormalizeCompound upper-cases and trims a raw compound string. Empty input
// yields an empty Compound so callers can treat it as missing.
func NormalizeCompound(raw string) Compound {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return Compound(upper.String(trimmed))
}

// Known reports whether the compound carries usable information.
func (c Compound) Known() bool {
	return c != "" && c != CompoundUnknown
}
