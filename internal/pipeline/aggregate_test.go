package pipeline

import (
	"context"
	"fmt"
	"testing"

	"claimlens/internal/fetch"
	"claimlens/internal/model"
)

func TestFilterByScore(t *testing.T) {
	items := []model.EvidenceItem{
		{Text: "a", Score: 0.5},
		{Text: "b", Score: 1.4},
		{Text: "c", Score: 1.39},
	}

	got := filterByScore(items, 1.4)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (cutoff is strict)", len(got))
	}
	if got[0].Text != "a" || got[1].Text != "c" {
		t.Errorf("got %v, want [a, c]", got)
	}
}

func TestRelaxThresholds(t *testing.T) {
	mk := func(scores ...float64) []model.EvidenceItem {
		items := make([]model.EvidenceItem, len(scores))
		for i, s := range scores {
			items[i] = model.EvidenceItem{Text: fmt.Sprintf("e%d", i), Score: s}
		}
		return items
	}

	tests := []struct {
		name     string
		scores   []float64
		wantLen  int
		wantWeak bool
	}{
		{"tight cutoff suffices", []float64{0.5, 0.8, 1.1, 1.5}, 3, false},
		{"middle cutoff needed", []float64{0.5, 1.3, 1.35, 1.9}, 3, false},
		{"loosest cutoff needed", []float64{1.45, 1.5, 1.55}, 3, true},
		{"even loosest insufficient", []float64{0.5, 1.5}, 2, true},
		{"nothing under any cutoff", []float64{1.7, 1.8}, 0, true},
		{"empty input", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, weak := relaxThresholds(mk(tt.scores...))
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			if weak != tt.wantWeak {
				t.Errorf("weak = %v, want %v", weak, tt.wantWeak)
			}
		})
	}
}

func TestDedupeByURL(t *testing.T) {
	items := []model.EvidenceItem{
		{Text: "first", URL: "https://a.example", Score: 0.1},
		{Text: "dupe", URL: "https://a.example", Score: 0.2},
		{Text: "no url 1", Score: 0.3},
		{Text: "no url 2", Score: 0.4},
		{Text: "other", URL: "https://b.example", Score: 0.5},
	}

	got := dedupeByURL(items)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].Text != "first" {
		t.Errorf("kept %q, want the first occurrence", got[0].Text)
	}
	// Items without URLs are never deduplicated against each other
	if got[1].Text != "no url 1" || got[2].Text != "no url 2" {
		t.Errorf("url-less items dropped: %v", got)
	}
}

func TestGatherEvidence_NoFetchWhenStrong(t *testing.T) {
	env := newTestEnv()
	env.store.results = [][]model.EvidenceItem{{
		{Text: "strong", URL: "u1", Score: 0.3},
		{Text: "gated", URL: "u2", Score: 1.5},
	}}

	round := env.pipeline().gatherEvidence(context.Background(), "claim", false)

	if len(round.items) != 1 || round.items[0].Text != "strong" {
		t.Errorf("items = %v, want only the gated-in strong match", round.items)
	}
	if round.fetched {
		t.Error("fetched = true, want false")
	}
	if env.fc.calls+env.news.calls != 0 {
		t.Error("fetchers called for a strong internal match")
	}
}

func TestGatherEvidence_WeakBestTriggersBackfill(t *testing.T) {
	env := newTestEnv()
	env.store.results = [][]model.EvidenceItem{
		{{Text: "weakish", URL: "u1", Score: 0.9}},
		{
			{Text: "weakish", URL: "u1", Score: 0.9},
			{Text: "fresh 1", URL: "u2", Score: 0.4},
			{Text: "fresh 2", URL: "u3", Score: 0.5},
		},
	}
	env.fc.claims = []fetch.Claim{{Text: "fact check"}}

	round := env.pipeline().gatherEvidence(context.Background(), "claim", false)

	if !round.fetched {
		t.Fatal("fetched = false, want true")
	}
	if env.store.awaitCalls != 1 {
		t.Errorf("awaitCalls = %d, want 1", env.store.awaitCalls)
	}
	if len(round.items) != 3 {
		t.Errorf("items = %d, want 3 from re-retrieval", len(round.items))
	}
}

func TestGatherEvidence_EmptyBackfillSkipsWait(t *testing.T) {
	env := newTestEnv()
	// Nothing internal, nothing fetchable

	round := env.pipeline().gatherEvidence(context.Background(), "claim", false)

	if len(round.items) != 0 {
		t.Errorf("items = %v, want none", round.items)
	}
	if env.store.awaitCalls != 0 {
		t.Errorf("awaitCalls = %d, want 0 when nothing was ingested", env.store.awaitCalls)
	}
	if len(env.store.ingested) != 0 {
		t.Errorf("ingested = %d claims, want 0", len(env.store.ingested))
	}
}

func TestGatherEvidence_TruncatesToMax(t *testing.T) {
	env := newTestEnv()
	var fresh []model.EvidenceItem
	for i := 0; i < 12; i++ {
		fresh = append(fresh, model.EvidenceItem{
			Text:  fmt.Sprintf("e%d", i),
			URL:   fmt.Sprintf("https://e.example/%d", i),
			Score: 0.1 + float64(i)*0.05,
		})
	}
	env.store.results = [][]model.EvidenceItem{nil, fresh}
	env.fc.claims = []fetch.Claim{{Text: "fact check"}}

	round := env.pipeline().gatherEvidence(context.Background(), "claim", false)

	if len(round.items) != 8 {
		t.Errorf("items = %d, want 8 after truncation", len(round.items))
	}
	if round.items[0].Text != "e0" {
		t.Errorf("items[0] = %s, want the most relevant kept first", round.items[0].Text)
	}
}

func TestBackfill_LaneAFallsBackToNews(t *testing.T) {
	env := newTestEnv()
	env.news.claims = []fetch.Claim{{Text: "news article"}}

	p := env.pipeline()
	got := p.backfill(context.Background(), "claim", false)

	if env.fc.calls != 1 {
		t.Errorf("fact check calls = %d, want 1", env.fc.calls)
	}
	if env.news.calls != 1 {
		t.Errorf("news calls = %d, want 1 (fallback)", env.news.calls)
	}
	if len(got) != 1 || got[0].Text != "news article" {
		t.Errorf("got %v, want the news article", got)
	}
}

func TestBackfill_LaneANoFallbackWhenFactChecksFound(t *testing.T) {
	env := newTestEnv()
	env.fc.claims = []fetch.Claim{{Text: "fact check"}}
	env.news.claims = []fetch.Claim{{Text: "news article"}}

	got := env.pipeline().backfill(context.Background(), "claim", false)

	if env.news.calls != 0 {
		t.Errorf("news calls = %d, want 0 when fact checks were found", env.news.calls)
	}
	if len(got) != 1 || got[0].Text != "fact check" {
		t.Errorf("got %v, want the fact check only", got)
	}
}

func TestBackfill_LaneBUsesNewsOnly(t *testing.T) {
	env := newTestEnv()
	env.fc.claims = []fetch.Claim{{Text: "fact check"}}
	env.news.claims = []fetch.Claim{{Text: "news article"}}

	p := New(Deps{
		Store:      env.store,
		FactChecks: env.fc,
		News:       env.news,
		Router:     &fakeRouter{lane: model.LaneB},
		Style:      env.style,
		Stance:     env.stance,
		Safety:     env.safety,
		Reputation: fakeReputation{},
		Cache:      env.cache,
		Config:     model.PipelineConfig{RetrieveK: 50, SoftGate: 1.4, WeakBest: 0.8, MaxEvidence: 8},
	})

	got := p.backfill(context.Background(), "some war happened", false)

	if env.fc.calls != 0 {
		t.Errorf("fact check calls = %d, want 0 on lane B", env.fc.calls)
	}
	if len(got) != 1 || got[0].Text != "news article" {
		t.Errorf("got %v, want the news article", got)
	}
}
