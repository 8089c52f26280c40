package model

import "strings"

// Turn is one utterance of the dialogue. A Transcript keeps turns in
// chronological order as supplied by the caller.
type Turn struct {
	SpeakerLabel string `json:"name"`
	RoleTag      string `json:"role,omitempty"`
	Text         string `json:"text"`
}

// Transcript is an ordered sequence of turns
type Transcript []Turn

// Serialize joins turns as "<speaker>: <text>" lines. Turns without a speaker
// label or with empty text are skipped. The output is stable for the same
// input.
func (t Transcript) Serialize() string {
	var b strings.Builder
	for _, turn := range t {
		if turn.SpeakerLabel == "" || turn.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(turn.SpeakerLabel)
		b.WriteString(": ")
		b.WriteString(turn.Text)
	}
	return b.String()
}
