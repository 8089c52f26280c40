package types

import (
	"fmt"
	"strings"
)

// JudgeTemperament is the behavioral profile applied to the judge's speech
type JudgeTemperament string

const (
	TemperamentProfessional     JudgeTemperament = "professional"
	TemperamentStrong           JudgeTemperament = "strong"
	TemperamentIrritable        JudgeTemperament = "irritable"
	TemperamentLazy             JudgeTemperament = "lazy"
	TemperamentWavering         JudgeTemperament = "wavering"
	TemperamentPartial          JudgeTemperament = "partial"
	TemperamentPartialPlaintiff JudgeTemperament = "partial-plaintiff"
	TemperamentPartialDefendant JudgeTemperament = "partial-defendant"
	TemperamentNeutral          JudgeTemperament = "neutral"
)

// DefaultTemperament applies when the temperament is unset or unrecognized
const DefaultTemperament = TemperamentNeutral

// AllJudgeTemperaments returns all valid judge temperaments
func AllJudgeTemperaments() []JudgeTemperament {
	return []JudgeTemperament{
		TemperamentProfessional,
		TemperamentStrong,
		TemperamentIrritable,
		TemperamentLazy,
		TemperamentWavering,
		TemperamentPartial,
		TemperamentPartialPlaintiff,
		TemperamentPartialDefendant,
		TemperamentNeutral,
	}
}

// IsValid checks if the temperament is valid
func (t JudgeTemperament) IsValid() bool {
	switch t {
	case TemperamentProfessional,
		TemperamentStrong,
		TemperamentIrritable,
		TemperamentLazy,
		TemperamentWavering,
		TemperamentPartial,
		TemperamentPartialPlaintiff,
		TemperamentPartialDefendant,
		TemperamentNeutral:
		return true
	default:
		return false
	}
}

// Normalize returns the temperament in canonical form, falling back to
// DefaultTemperament for empty or unrecognized values.
func (t JudgeTemperament) Normalize() JudgeTemperament {
	n := JudgeTemperament(strings.ToLower(strings.TrimSpace(string(t))))
	if !n.IsValid() {
		return DefaultTemperament
	}
	return n
}

// String returns the string representation of the temperament
func (t JudgeTemperament) String() string {
	return string(t)
}

// ParseJudgeTemperament parses a string into a JudgeTemperament
func ParseJudgeTemperament(s string) (JudgeTemperament, error) {
	t := JudgeTemperament(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid judge temperament: %s", s)
	}
	return t, nil
}
