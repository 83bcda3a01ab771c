package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"claimlens/internal/cache"
	"claimlens/internal/fetch"
	"claimlens/internal/model"
)

// fakeStore scripts retrieval results. Each Retrieve call pops the next
// result set; the last set repeats once the script runs out.
type fakeStore struct {
	results     [][]model.EvidenceItem
	calls       int
	ingested    []fetch.Claim
	count       int
	awaitCalls  int
	retrieveErr error
}

func (s *fakeStore) Retrieve(ctx context.Context, query string, k int) ([]model.EvidenceItem, error) {
	if s.retrieveErr != nil {
		return nil, s.retrieveErr
	}
	idx := s.calls
	s.calls++
	if idx >= len(s.results) {
		if len(s.results) == 0 {
			return nil, nil
		}
		idx = len(s.results) - 1
	}
	items := make([]model.EvidenceItem, len(s.results[idx]))
	copy(items, s.results[idx])
	return items, nil
}

func (s *fakeStore) Ingest(ctx context.Context, claims []fetch.Claim) (int, error) {
	s.ingested = append(s.ingested, claims...)
	s.count += len(claims)
	return len(claims), nil
}

func (s *fakeStore) Count(ctx context.Context) (int, error) { return s.count, nil }

func (s *fakeStore) AwaitIndexed(ctx context.Context, want int) error {
	s.awaitCalls++
	return nil
}

type fakeFetcher struct {
	claims []fetch.Claim
	err    error
	calls  int
}

func (f *fakeFetcher) Search(ctx context.Context, query string) ([]fetch.Claim, error) {
	f.calls++
	return f.claims, f.err
}

type fakeRouter struct{ lane model.Lane }

func (r *fakeRouter) Route(text string) model.Lane { return r.lane }

type fakeStyle struct{ score float64 }

func (s *fakeStyle) Analyze(text string) model.StyleAnalysis {
	return model.StyleAnalysis{
		Score:   s.score,
		Verdict: "This claim uses generally neutral language, facilitating objective verification.",
	}
}

// fakeStance maps evidence text to a stance label; unmapped text errors
type fakeStance struct {
	labels map[string]model.StanceLabel
}

func (s *fakeStance) Predict(ctx context.Context, claim, evidence string) (model.StanceResult, error) {
	label, ok := s.labels[evidence]
	if !ok {
		return model.StanceResult{}, errors.New("no stance scripted")
	}
	return model.StanceResult{Label: label, Confidence: 0.9}, nil
}

type fakeSafety struct {
	critical bool
	err      error
}

func (s *fakeSafety) CheckSafety(ctx context.Context, text string) (bool, error) {
	return s.critical, s.err
}

type fakeReputation struct{}

func (fakeReputation) Check(url string) model.Credibility {
	if url == "" {
		return model.CredibilityUnknown
	}
	return model.CredibilityNeutral
}

type testEnv struct {
	store  *fakeStore
	fc     *fakeFetcher
	news   *fakeFetcher
	stance *fakeStance
	safety *fakeSafety
	style  *fakeStyle
	cache  cache.Cache
}

func newTestEnv() *testEnv {
	return &testEnv{
		store:  &fakeStore{},
		fc:     &fakeFetcher{},
		news:   &fakeFetcher{},
		stance: &fakeStance{labels: map[string]model.StanceLabel{}},
		safety: &fakeSafety{},
		style:  &fakeStyle{score: 0.1},
		cache:  cache.NewMemoryCache(time.Hour, time.Hour),
	}
}

func (e *testEnv) pipeline() *Pipeline {
	return New(Deps{
		Store:      e.store,
		FactChecks: e.fc,
		News:       e.news,
		Router:     &fakeRouter{lane: model.LaneA},
		Style:      e.style,
		Stance:     e.stance,
		Safety:     e.safety,
		Reputation: fakeReputation{},
		Cache:      e.cache,
		Config: model.PipelineConfig{
			RetrieveK:   50,
			SoftGate:    1.4,
			WeakBest:    0.8,
			MaxEvidence: 8,
		},
		CacheTTL: time.Hour,
		Logger:   slog.New(slog.DiscardHandler),
	})
}

func TestAnalyze_CleanSupport(t *testing.T) {
	env := newTestEnv()
	env.style.score = 0.4
	env.store.results = [][]model.EvidenceItem{{
		{Text: "supporting evidence", URL: "https://a.example/1", Score: 0.3},
	}}
	env.stance.labels["supporting evidence"] = model.StanceSupports

	result, err := env.pipeline().Analyze(context.Background(), "the earth is round")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.RiskScore != 5 {
		t.Errorf("risk = %v, want 5 (capped by supporting evidence)", result.RiskScore)
	}
	if result.QualityNote != model.NoteVerified {
		t.Errorf("note = %q, want %q", result.QualityNote, model.NoteVerified)
	}
	if result.StanceSummary.Supports != 1 {
		t.Errorf("supports = %d, want 1", result.StanceSummary.Supports)
	}
	if result.Status != "completed" {
		t.Errorf("status = %q, want completed", result.Status)
	}
	if result.Meta.AppVersion != model.AppVersion {
		t.Errorf("meta app version = %q", result.Meta.AppVersion)
	}
	// No backfill: best match was strong and nothing was safety critical
	if env.fc.calls != 0 || env.news.calls != 0 {
		t.Errorf("fetchers called (%d, %d), want none", env.fc.calls, env.news.calls)
	}
}

func TestAnalyze_LowStyleRiskNotRaised(t *testing.T) {
	env := newTestEnv()
	env.style.score = 0.02 // style risk 2, already under the support cap
	env.store.results = [][]model.EvidenceItem{{
		{Text: "supporting evidence", URL: "https://a.example/1", Score: 0.3},
	}}
	env.stance.labels["supporting evidence"] = model.StanceSupports

	result, err := env.pipeline().Analyze(context.Background(), "water is wet")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.RiskScore != 2 {
		t.Errorf("risk = %v, want 2 (support caps, never raises)", result.RiskScore)
	}
}

func TestAnalyze_Contested(t *testing.T) {
	env := newTestEnv()
	env.store.results = [][]model.EvidenceItem{{
		{Text: "for", URL: "https://a.example/1", Score: 0.2},
		{Text: "against", URL: "https://a.example/2", Score: 0.4},
	}}
	env.stance.labels["for"] = model.StanceSupports
	env.stance.labels["against"] = model.StanceRefutes

	result, err := env.pipeline().Analyze(context.Background(), "disputed claim")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.RiskScore != 65 {
		t.Errorf("risk = %v, want 65", result.RiskScore)
	}
	if result.QualityNote != model.NoteContested {
		t.Errorf("note = %q, want %q", result.QualityNote, model.NoteContested)
	}
	// Diversity: the best refuting item leads, the best supporting follows
	if len(result.Evidence) != 2 {
		t.Fatalf("evidence len = %d, want 2", len(result.Evidence))
	}
	if result.Evidence[0].Text != "against" || result.Evidence[1].Text != "for" {
		t.Errorf("evidence order = [%s, %s], want [against, for]",
			result.Evidence[0].Text, result.Evidence[1].Text)
	}
}

func TestAnalyze_Refuted(t *testing.T) {
	env := newTestEnv()
	env.style.score = 0.2
	env.store.results = [][]model.EvidenceItem{{
		{Text: "debunked", URL: "https://a.example/1", Score: 0.3},
	}}
	env.stance.labels["debunked"] = model.StanceRefutes

	result, err := env.pipeline().Analyze(context.Background(), "5g causes illness")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.RiskScore != 95 {
		t.Errorf("risk = %v, want 95", result.RiskScore)
	}
}

func TestAnalyze_SafetyCriticalNoEvidence(t *testing.T) {
	env := newTestEnv()
	env.style.score = 0.3
	env.safety.critical = true
	// No internal evidence and no backfill data anywhere

	result, err := env.pipeline().Analyze(context.Background(), "dangerous remedy claim")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.RiskScore != 80 {
		t.Errorf("risk = %v, want 80 (safety floor)", result.RiskScore)
	}
	// The insufficient-evidence override beats the high-risk note
	if result.QualityNote != model.NoteInsufficient {
		t.Errorf("note = %q, want %q", result.QualityNote, model.NoteInsufficient)
	}
}

func TestAnalyze_CacheShortCircuit(t *testing.T) {
	env := newTestEnv()
	env.store.results = [][]model.EvidenceItem{{
		{Text: "supporting evidence", URL: "https://a.example/1", Score: 0.3},
	}}
	env.stance.labels["supporting evidence"] = model.StanceSupports

	p := env.pipeline()
	first, err := p.Analyze(context.Background(), "cached claim")
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}

	callsAfterFirst := env.store.calls
	second, err := p.Analyze(context.Background(), "cached claim")
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}

	if env.store.calls != callsAfterFirst {
		t.Errorf("second run hit the store %d extra times, want 0", env.store.calls-callsAfterFirst)
	}
	if second.RiskScore != first.RiskScore || second.QualityNote != first.QualityNote {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}

	// Different bytes miss the cache even when semantically identical
	if _, err := p.Analyze(context.Background(), "Cached claim"); err != nil {
		t.Fatalf("third Analyze: %v", err)
	}
	if env.store.calls == callsAfterFirst {
		t.Error("case-variant text unexpectedly hit the cache")
	}
}

func TestAnalyze_DeepFetchOnAllNeutral(t *testing.T) {
	env := newTestEnv()
	// First retrieval: one neutral item. Deep-fetch retrieval: the same
	// item plus a new refuting one.
	env.store.results = [][]model.EvidenceItem{
		{
			{Text: "background", URL: "https://a.example/1", Score: 0.3},
		},
		{
			{Text: "background", URL: "https://a.example/1", Score: 0.3},
			{Text: "debunked", URL: "https://a.example/2", Score: 0.5},
		},
	}
	env.stance.labels["background"] = model.StanceNeutral
	env.stance.labels["debunked"] = model.StanceRefutes
	env.news.claims = []fetch.Claim{{Text: "fresh article"}}

	result, err := env.pipeline().Analyze(context.Background(), "all neutral at first")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.StanceSummary.Refutes != 1 {
		t.Errorf("refutes = %d, want 1 from deep fetch", result.StanceSummary.Refutes)
	}
	if result.StanceSummary.Neutral != 1 {
		t.Errorf("neutral = %d, want 1 (seen URL not reclassified)", result.StanceSummary.Neutral)
	}
	if result.RiskScore != 95 {
		t.Errorf("risk = %v, want 95", result.RiskScore)
	}
	// Both lanes fetched exactly once: the round never recurses
	if env.fc.calls != 1 || env.news.calls != 1 {
		t.Errorf("fetcher calls = (%d, %d), want (1, 1)", env.fc.calls, env.news.calls)
	}
}

func TestAnalyze_StanceFailureDegrades(t *testing.T) {
	env := newTestEnv()
	env.style.score = 0.2
	env.store.results = [][]model.EvidenceItem{{
		{Text: "unscripted evidence", URL: "https://a.example/1", Score: 0.3},
	}}
	// No stance mapping: every Predict call fails

	result, err := env.pipeline().Analyze(context.Background(), "classifier is down")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	// Unclassified items carry no stance and are not tallied
	if result.StanceSummary != (model.StanceSummary{}) {
		t.Errorf("summary = %+v, want all zero", result.StanceSummary)
	}
	if result.RiskScore != 20 {
		t.Errorf("risk = %v, want style risk 20 untouched", result.RiskScore)
	}
	if len(result.Evidence) != 1 || result.Evidence[0].Stance != nil {
		t.Errorf("evidence should survive unclassified: %+v", result.Evidence)
	}
}

func TestAnalyze_SafetyCheckerFailureMeansNotCritical(t *testing.T) {
	env := newTestEnv()
	env.safety.err = errors.New("backend down")
	env.store.results = [][]model.EvidenceItem{{
		{Text: "supporting evidence", URL: "https://a.example/1", Score: 0.3},
	}}
	env.stance.labels["supporting evidence"] = model.StanceSupports

	result, err := env.pipeline().Analyze(context.Background(), "safety backend is down")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.QualityNote != model.NoteVerified {
		t.Errorf("note = %q, want %q", result.QualityNote, model.NoteVerified)
	}
}
