package pipeline

import "claimlens/internal/model"

// FusionInput carries everything the risk fusion rule set needs.
// StyleRisk is on the 0-99 scale; the counts are final stance tallies.
type FusionInput struct {
	StyleRisk            float64
	Supports             int
	Refutes              int
	Neutral              int
	SafetyCritical       bool
	InsufficientEvidence bool
}

// Fuse combines the style risk, stance tallies, and safety flag into the
// final risk score and quality note. The branches are evaluated in a fixed
// order and the first match wins:
//
//  1. refutes and supports both present: contested, risk pinned to 65
//  2. refutes only: risk raised to at least 95
//  3. supports only: risk lowered to at most 5
//  4. safety-critical: elevated when evidence is missing or all neutral
//  5. otherwise the style risk stands
//
// An insufficient evidence set forces the note to "Insufficient Evidence"
// as the very last step, beating any note the branches produced. That
// override is product policy and must stay last.
func Fuse(in FusionInput, note model.QualityNote) (float64, model.QualityNote) {
	risk := in.StyleRisk

	switch {
	case in.Refutes > 0 && in.Supports > 0:
		risk = 65
		note = model.NoteContested

	case in.Refutes > 0:
		if risk < 95 {
			risk = 95
		}

	case in.Supports > 0:
		if risk > 5 {
			risk = 5
		}

	case in.SafetyCritical:
		if in.InsufficientEvidence {
			if risk < 80 {
				risk = 80
			}
			note = model.NoteHighRisk
		} else if in.Neutral > 0 && in.StyleRisk < 50 {
			risk = 70
			note = model.NoteCaution
		}
	}

	if in.InsufficientEvidence {
		note = model.NoteInsufficient
	}

	return risk, note
}
