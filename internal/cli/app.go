package cli

import (
	"fmt"
	"log/slog"

	"claimlens/internal/cache"
	"claimlens/internal/fetch"
	"claimlens/internal/infer"
	"claimlens/internal/model"
	"claimlens/internal/pipeline"
	"claimlens/internal/reputation"
	"claimlens/internal/route"
	"claimlens/internal/store"
	"claimlens/internal/style"
)

// app holds the fully wired components shared by the serve, analyze, and
// ingest commands
type app struct {
	cfg      *model.Config
	logger   *slog.Logger
	store    *store.EvidenceStore
	factChks *fetch.FactCheckClient
	news     *fetch.NewsClient
	pipeline *pipeline.Pipeline
}

// buildApp wires every component from the resolved configuration
func buildApp(cfg *model.Config, logger *slog.Logger) (*app, error) {
	evidenceStore, err := store.New(cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to evidence store: %w", err)
	}

	limiter := fetch.NewLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Burst)
	robots := fetch.NewRobotsChecker(cfg.Fetch.UserAgent, cfg.Fetch.NewsTimeout)

	factChecks := fetch.NewFactCheckClient(
		cfg.Fetch.FactCheckAPIKey,
		cfg.Fetch.FactCheckURL,
		cfg.Fetch.FactCheckTimeout,
		limiter,
		logger,
	)
	news := fetch.NewNewsClient(
		cfg.Fetch.NewsRSSURL,
		cfg.Fetch.UserAgent,
		cfg.Fetch.NewsTimeout,
		limiter,
		robots,
		logger,
	)

	classifiers, err := infer.NewClassifiers(infer.ConfigFromModel(cfg.Infer))
	if err != nil {
		return nil, fmt.Errorf("building classifiers: %w", err)
	}

	resultCache := cache.NewLayeredCache(cfg.Cache.ResultTTL, cfg.Cache.Dir, cfg.Cache.ResultTTL)

	p := pipeline.New(pipeline.Deps{
		Store:      evidenceStore,
		FactChecks: factChecks,
		News:       news,
		Router:     route.NewRouter(logger),
		Style:      style.NewAnalyzer(),
		Stance:     classifiers.Stance,
		Safety:     classifiers.Safety,
		Saliency:   classifiers.Saliency,
		Reputation: reputation.NewChecker(),
		Cache:      resultCache,
		Config:     cfg.Pipeline,
		CacheTTL:   cfg.Cache.ResultTTL,
		Logger:     logger,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    evidenceStore,
		factChks: factChecks,
		news:     news,
		pipeline: p,
	}, nil
}
