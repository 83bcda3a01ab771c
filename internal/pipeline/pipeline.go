// Package pipeline runs the full claim analysis: style scoring, evidence
// retrieval with adaptive backfill, stance classification, and risk fusion.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"claimlens/internal/cache"
	"claimlens/internal/fetch"
	"claimlens/internal/infer"
	"claimlens/internal/model"
)

// EvidenceStore is the vector store surface the pipeline needs
type EvidenceStore interface {
	Retrieve(ctx context.Context, query string, k int) ([]model.EvidenceItem, error)
	Ingest(ctx context.Context, claims []fetch.Claim) (int, error)
	Count(ctx context.Context) (int, error)
	AwaitIndexed(ctx context.Context, want int) error
}

// ClaimFetcher is one live backfill lane
type ClaimFetcher interface {
	Search(ctx context.Context, query string) ([]fetch.Claim, error)
}

// Router picks the backfill lane for a claim
type Router interface {
	Route(text string) model.Lane
}

// StyleScorer produces the evidence-independent language risk assessment
type StyleScorer interface {
	Analyze(text string) model.StyleAnalysis
}

// ReputationChecker rates the credibility of a source URL
type ReputationChecker interface {
	Check(url string) model.Credibility
}

// Deps are the collaborators a Pipeline is built from. Saliency may be nil
// when the backend cannot explain itself; the heatmap is then omitted.
type Deps struct {
	Store      EvidenceStore
	FactChecks ClaimFetcher
	News       ClaimFetcher
	Router     Router
	Style      StyleScorer
	Stance     infer.StanceClassifier
	Safety     infer.SafetyChecker
	Saliency   infer.SaliencyExplainer
	Reputation ReputationChecker
	Cache      cache.Cache
	Config     model.PipelineConfig
	CacheTTL   time.Duration
	Logger     *slog.Logger
}

// Pipeline is the claim analysis engine. It is safe for concurrent use as
// long as its collaborators are.
type Pipeline struct {
	store      EvidenceStore
	factChecks ClaimFetcher
	news       ClaimFetcher
	router     Router
	style      StyleScorer
	stance     infer.StanceClassifier
	safety     infer.SafetyChecker
	saliency   infer.SaliencyExplainer
	reputation ReputationChecker
	cache      cache.Cache
	cfg        model.PipelineConfig
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// New builds a Pipeline from its collaborators
func New(deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:      deps.Store,
		factChecks: deps.FactChecks,
		news:       deps.News,
		router:     deps.Router,
		style:      deps.Style,
		stance:     deps.Stance,
		safety:     deps.Safety,
		saliency:   deps.Saliency,
		reputation: deps.Reputation,
		cache:      deps.Cache,
		cfg:        deps.Config,
		cacheTTL:   deps.CacheTTL,
		logger:     logger,
	}
}

// Analyze runs the full pipeline on a claim text and returns the completed
// result. A byte-identical resubmission within the cache TTL returns the
// cached result without re-running anything. Classifier and fetcher
// failures degrade the result rather than fail the analysis; only a nil
// result means the pipeline could not run at all.
func (p *Pipeline) Analyze(ctx context.Context, text string) (*model.AnalysisResult, error) {
	key := cache.Key(text)
	if data, ok := p.cache.Get(key); ok {
		var cached model.AnalysisResult
		if err := json.Unmarshal(data, &cached); err == nil {
			p.logger.Info("returning cached analysis", "key", key)
			return &cached, nil
		}
		p.logger.Warn("cached result unreadable, re-analyzing", "key", key)
	}

	styleRes := p.style.Analyze(text)
	styleRisk := styleRes.Score * 100

	heatmap := p.explainSaliency(ctx, text)
	safetyCritical := p.checkSafety(ctx, text)

	round := p.gatherEvidence(ctx, text, safetyCritical)

	note := model.NoteVerified
	if round.weak {
		note = model.NoteWeakEvidence
	}
	insufficient := len(round.items) == 0

	items, tallies, seen := p.classifyStances(ctx, text, round.items)
	items, tallies = p.deepFetchAllNeutral(ctx, text, items, tallies, seen)
	items = diversify(items)

	risk, note := Fuse(FusionInput{
		StyleRisk:            styleRisk,
		Supports:             tallies.supports,
		Refutes:              tallies.refutes,
		Neutral:              tallies.neutral,
		SafetyCritical:       safetyCritical,
		InsufficientEvidence: insufficient,
	}, note)

	result := &model.AnalysisResult{
		Text:              text,
		StyleRiskScore:    risk,
		RiskScore:         risk,
		Heatmap:           heatmap,
		Evidence:          items,
		StanceSummary:     tallies.summary(),
		Status:            "completed",
		QualityNote:       note,
		LinguisticSignals: styleRes.Signals,
		LinguisticVerdict: styleRes.Verdict,
		Meta: model.Meta{
			AppVersion:   model.AppVersion,
			ModelType:    model.ModelType,
			IndexVersion: model.IndexVersion,
		},
	}

	p.writeCache(key, result)

	p.logger.Info("analysis complete",
		"risk_score", risk,
		"quality_note", string(note),
		"evidence", len(items),
		"supports", tallies.supports,
		"refutes", tallies.refutes,
		"neutral", tallies.neutral)

	return result, nil
}

// explainSaliency is best effort: a missing or failing explainer yields no
// heatmap, never an error
func (p *Pipeline) explainSaliency(ctx context.Context, text string) []model.HeatmapEntry {
	if p.saliency == nil {
		return nil
	}
	heatmap, err := p.saliency.Explain(ctx, text)
	if err != nil {
		p.logger.Warn("saliency explanation failed", "err", err)
		return nil
	}
	return heatmap
}

// checkSafety is best effort: a failing checker means not safety-critical
func (p *Pipeline) checkSafety(ctx context.Context, text string) bool {
	critical, err := p.safety.CheckSafety(ctx, text)
	if err != nil {
		p.logger.Warn("safety check failed", "err", err)
		return false
	}
	if critical {
		p.logger.Info("claim flagged safety critical")
	}
	return critical
}

// writeCache is best effort: a failing cache write loses only the cache hit
func (p *Pipeline) writeCache(key string, result *model.AnalysisResult) {
	data, err := json.Marshal(result)
	if err != nil {
		p.logger.Warn("result marshal failed, skipping cache", "err", err)
		return
	}
	if err := p.cache.Set(key, data, p.cacheTTL); err != nil {
		p.logger.Warn("cache write failed", "err", err)
	}
}
