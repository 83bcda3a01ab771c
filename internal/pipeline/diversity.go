package pipeline

import (
	"sort"

	"claimlens/internal/model"
)

// diversify reorders stance-labeled evidence so conflicting and
// corroborating items surface first regardless of volume: the single best
// refutes item, then the single best supports item, then the single best
// neutral item, followed by everything else in pure relevance order.
func diversify(items []model.EvidenceItem) []model.EvidenceItem {
	var supports, refutes, neutral []model.EvidenceItem
	for _, item := range items {
		switch stanceLabel(item) {
		case model.StanceSupports:
			supports = append(supports, item)
		case model.StanceRefutes:
			refutes = append(refutes, item)
		default:
			neutral = append(neutral, item)
		}
	}

	sortByScore(supports)
	sortByScore(refutes)
	sortByScore(neutral)

	ordered := make([]model.EvidenceItem, 0, len(items))
	if len(refutes) > 0 {
		ordered = append(ordered, refutes[0])
		refutes = refutes[1:]
	}
	if len(supports) > 0 {
		ordered = append(ordered, supports[0])
		supports = supports[1:]
	}
	if len(neutral) > 0 {
		ordered = append(ordered, neutral[0])
		neutral = neutral[1:]
	}

	remaining := make([]model.EvidenceItem, 0, len(supports)+len(refutes)+len(neutral))
	remaining = append(remaining, supports...)
	remaining = append(remaining, refutes...)
	remaining = append(remaining, neutral...)
	sortByScore(remaining)

	return append(ordered, remaining...)
}

// stanceLabel treats unclassified items as neutral
func stanceLabel(item model.EvidenceItem) model.StanceLabel {
	if item.Stance == nil {
		return model.StanceNeutral
	}
	return item.Stance.Label
}

// sortByScore orders ascending by distance: most relevant first
func sortByScore(items []model.EvidenceItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score < items[j].Score
	})
}
