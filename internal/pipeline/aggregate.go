package pipeline

import (
	"context"

	"claimlens/internal/fetch"
	"claimlens/internal/model"
)

// relaxationLadder holds the distance cutoffs tried in ascending order
// when re-filtering after a backfill round.
var relaxationLadder = []float64{1.2, 1.4, 1.6}

// minAcceptableMatches is the evidence count that stops the relaxation loop
const minAcceptableMatches = 3

// evidenceRound is the outcome of the retrieval-and-backfill stage
type evidenceRound struct {
	items []model.EvidenceItem
	// weak is set when only the loosest cutoff produced the final set
	weak bool
	// fetched is set when a backfill round ingested new data
	fetched bool
}

// gatherEvidence retrieves internal evidence, decides whether a live
// backfill is needed, runs it, and returns the deduplicated final set.
//
// The backfill decision: a safety-critical claim always fetches, empty
// evidence fetches, and evidence whose best match is still weak fetches.
func (p *Pipeline) gatherEvidence(ctx context.Context, text string, safetyCritical bool) evidenceRound {
	items, err := p.store.Retrieve(ctx, text, p.cfg.RetrieveK)
	if err != nil {
		p.logger.Warn("evidence retrieval failed", "err", err)
		items = nil
	}
	sortByScore(items)
	filtered := filterByScore(items, p.cfg.SoftGate)

	shouldFetch := false
	switch {
	case safetyCritical:
		p.logger.Info("safety check triggered, forcing backfill")
		shouldFetch = true
	case len(filtered) == 0:
		p.logger.Info("no relevant internal evidence, triggering backfill")
		shouldFetch = true
	default:
		best := filtered[0].Score
		if best > p.cfg.WeakBest {
			p.logger.Info("best internal match is weak, triggering backfill", "best_score", best)
			shouldFetch = true
		}
	}

	if !shouldFetch {
		return evidenceRound{items: dedupeByURL(filtered)}
	}

	newData := p.backfill(ctx, text, safetyCritical)
	if len(newData) == 0 {
		// Nothing ingested, so there is nothing to wait for
		p.logger.Info("backfill found no data in any lane")
		return evidenceRound{items: dedupeByURL(filtered)}
	}

	baseline, err := p.store.Count(ctx)
	if err != nil {
		baseline = 0
	}
	accepted, err := p.store.Ingest(ctx, newData)
	if err != nil {
		p.logger.Warn("backfill ingest failed", "err", err)
		return evidenceRound{items: dedupeByURL(filtered)}
	}
	if err := p.store.AwaitIndexed(ctx, baseline+accepted); err != nil {
		p.logger.Warn("indexing wait aborted", "err", err)
		return evidenceRound{items: dedupeByURL(filtered)}
	}

	raw, err := p.store.Retrieve(ctx, text, p.cfg.RetrieveK)
	if err != nil {
		p.logger.Warn("re-retrieval failed after backfill", "err", err)
		return evidenceRound{items: dedupeByURL(filtered)}
	}
	sortByScore(raw)

	final, weak := relaxThresholds(raw)
	if len(final) > p.cfg.MaxEvidence {
		final = final[:p.cfg.MaxEvidence]
	}
	if weak {
		p.logger.Info("loosest relaxation cutoff required, flagging weak evidence")
	}

	return evidenceRound{items: dedupeByURL(final), weak: weak, fetched: true}
}

// backfill routes the claim and fetches from the matching lane. Lane A
// falls back to the news lane when the fact-check lookup comes up empty;
// a safety-critical claim with no data so far also hits the news lane.
// Fetcher failures are logged and treated as empty.
func (p *Pipeline) backfill(ctx context.Context, text string, safetyCritical bool) []fetch.Claim {
	lane := p.router.Route(text)
	p.logger.Info("route selected", "lane", string(lane))

	var newData []fetch.Claim

	if lane == model.LaneA {
		fc, err := p.factChecks.Search(ctx, text)
		if err != nil {
			p.logger.Warn("fact check fetch failed", "err", err)
		}
		newData = append(newData, fc...)

		if len(fc) == 0 {
			p.logger.Info("fact check lane empty, falling back to news lane")
			news, err := p.news.Search(ctx, text)
			if err != nil {
				p.logger.Warn("news fetch failed", "err", err)
			}
			newData = append(newData, news...)
		}
	} else if lane == model.LaneB || (safetyCritical && len(newData) == 0) {
		news, err := p.news.Search(ctx, text)
		if err != nil {
			p.logger.Warn("news fetch failed", "err", err)
		}
		newData = append(newData, news...)
	}

	return newData
}

// relaxThresholds re-filters raw evidence with progressively looser
// cutoffs, accepting the first one that yields enough matches. When even
// the loosest cutoff cannot produce enough, whatever it yielded is kept
// and the round is marked weak.
func relaxThresholds(raw []model.EvidenceItem) ([]model.EvidenceItem, bool) {
	var final []model.EvidenceItem
	used := relaxationLadder[0]

	for _, cutoff := range relaxationLadder {
		filtered := filterByScore(raw, cutoff)
		final = filtered
		used = cutoff
		if len(filtered) >= minAcceptableMatches {
			break
		}
	}

	return final, used >= relaxationLadder[len(relaxationLadder)-1]
}

// filterByScore keeps items strictly below the distance cutoff,
// preserving order
func filterByScore(items []model.EvidenceItem, cutoff float64) []model.EvidenceItem {
	filtered := make([]model.EvidenceItem, 0, len(items))
	for _, item := range items {
		if item.Score < cutoff {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// dedupeByURL keeps the first occurrence of every non-empty URL. Items
// without a URL are never deduplicated, against each other or anything else.
func dedupeByURL(items []model.EvidenceItem) []model.EvidenceItem {
	seen := make(map[string]bool, len(items))
	unique := make([]model.EvidenceItem, 0, len(items))
	for _, item := range items {
		if item.URL != "" {
			if seen[item.URL] {
				continue
			}
			seen[item.URL] = true
		}
		unique = append(unique, item)
	}
	return unique
}
