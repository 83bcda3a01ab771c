package pipeline

import (
	"context"

	"claimlens/internal/fetch"
	"claimlens/internal/model"
)

// tally accumulates stance counts across classification rounds. It is
// threaded through the stages by value so each stage stays testable alone.
type tally struct {
	supports int
	refutes  int
	neutral  int
}

func (t tally) summary() model.StanceSummary {
	return model.StanceSummary{
		Supports: t.supports,
		Refutes:  t.refutes,
		Neutral:  t.neutral,
	}
}

// classifyStances runs the stance classifier over every evidence item and
// attaches source credibility. Classification failures are logged and the
// item stays unlabeled; it contributes nothing to the tallies. The returned
// set records every non-empty URL already processed, for the deep-fetch
// round to skip.
func (p *Pipeline) classifyStances(ctx context.Context, claim string, items []model.EvidenceItem) ([]model.EvidenceItem, tally, map[string]bool) {
	seen := make(map[string]bool, len(items))
	var t tally

	out := make([]model.EvidenceItem, 0, len(items))
	for _, item := range items {
		if item.URL != "" {
			seen[item.URL] = true
		}
		p.classifyOne(ctx, claim, &item, &t)
		out = append(out, item)
	}

	return out, t, seen
}

func (p *Pipeline) classifyOne(ctx context.Context, claim string, item *model.EvidenceItem, t *tally) {
	stance, err := p.stance.Predict(ctx, claim, item.Text)
	if err != nil {
		p.logger.Warn("stance classification failed", "url", item.URL, "err", err)
	} else {
		item.Stance = &stance
		switch stance.Label {
		case model.StanceSupports:
			t.supports++
		case model.StanceRefutes:
			t.refutes++
		default:
			t.neutral++
		}
	}

	item.Credibility = p.reputation.Check(item.URL)
}

// deepFetchAllNeutral runs at most one extra backfill round when evidence
// exists but everything classified neutral: related material was found, yet
// nothing confirms or debunks the claim. Both lanes are fetched
// unconditionally, routing is skipped, and only newly seen URLs are
// classified. The round never recurses, even if its own results are also
// all neutral.
func (p *Pipeline) deepFetchAllNeutral(ctx context.Context, claim string, items []model.EvidenceItem, t tally, seen map[string]bool) ([]model.EvidenceItem, tally) {
	if len(items) == 0 || t.supports > 0 || t.refutes > 0 {
		return items, t
	}

	p.logger.Info("evidence all neutral, triggering deep fetch")

	var newData []fetch.Claim
	fc, err := p.factChecks.Search(ctx, claim)
	if err != nil {
		p.logger.Warn("deep fetch fact check failed", "err", err)
	}
	newData = append(newData, fc...)

	news, err := p.news.Search(ctx, claim)
	if err != nil {
		p.logger.Warn("deep fetch news failed", "err", err)
	}
	newData = append(newData, news...)

	if len(newData) == 0 {
		return items, t
	}

	baseline, err := p.store.Count(ctx)
	if err != nil {
		baseline = 0
	}
	accepted, err := p.store.Ingest(ctx, newData)
	if err != nil {
		p.logger.Warn("deep fetch ingest failed", "err", err)
		return items, t
	}
	if err := p.store.AwaitIndexed(ctx, baseline+accepted); err != nil {
		return items, t
	}

	fresh, err := p.store.Retrieve(ctx, claim, p.cfg.RetrieveK)
	if err != nil {
		p.logger.Warn("deep fetch re-retrieval failed", "err", err)
		return items, t
	}

	added := 0
	for _, item := range fresh {
		if item.URL != "" {
			if seen[item.URL] {
				continue
			}
			seen[item.URL] = true
		}
		p.classifyOne(ctx, claim, &item, &t)
		items = append(items, item)
		added++
	}

	p.logger.Info("deep fetch complete", "new_items", added)
	return items, t
}
