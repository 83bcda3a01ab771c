// Package ingest seeds the evidence store with fact-checked claims so the
// retrieval stage has something to match against on a fresh deployment.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"claimlens/internal/fetch"
)

// DefaultTopics are the seed queries run against the fact-check lane
var DefaultTopics = []string{
	"misinformation",
	"ukraine war",
	"gaza",
	"climate change",
	"vaccines",
	"economy",
}

// Store is the ingestion surface of the evidence store
type Store interface {
	EnsureSchema(ctx context.Context) error
	Ingest(ctx context.Context, claims []fetch.Claim) (int, error)
}

// Fetcher is the fact-check lane used for seeding
type Fetcher interface {
	Search(ctx context.Context, query string) ([]fetch.Claim, error)
}

// Seeder populates the evidence store from the fact-check lane, falling
// back to a built-in demo dataset when the lane yields nothing.
type Seeder struct {
	store   Store
	fetcher Fetcher
	logger  *slog.Logger
}

// NewSeeder builds a Seeder
func NewSeeder(store Store, fetcher Fetcher, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{store: store, fetcher: fetcher, logger: logger}
}

// Seed ensures the store schema exists, fetches claims for every topic,
// and ingests whatever was found. Per-topic fetch failures are logged and
// skipped; an empty harvest falls back to the demo dataset so the store is
// never left empty.
func (s *Seeder) Seed(ctx context.Context, topics []string) (int, error) {
	if err := s.store.EnsureSchema(ctx); err != nil {
		return 0, fmt.Errorf("ensuring schema: %w", err)
	}

	if len(topics) == 0 {
		topics = DefaultTopics
	}

	var all []fetch.Claim
	for _, topic := range topics {
		s.logger.Info("fetching seed claims", "topic", topic)
		claims, err := s.fetcher.Search(ctx, topic)
		if err != nil {
			s.logger.Warn("seed fetch failed", "topic", topic, "err", err)
			continue
		}
		all = append(all, claims...)
	}

	if len(all) == 0 {
		s.logger.Warn("no claims fetched, seeding demo dataset")
		all = demoClaims()
	}

	count, err := s.store.Ingest(ctx, all)
	if err != nil {
		return 0, fmt.Errorf("ingesting seed claims: %w", err)
	}

	s.logger.Info("seeding complete", "ingested", count)
	return count, nil
}

// demoClaims is a small curated dataset covering well-trodden claims, used
// when no fact-check API key is configured
func demoClaims() []fetch.Claim {
	return []fetch.Claim{
		{
			Text:        "The Earth is an oblate spheroid, not flat. Satellite imagery and physics prove this.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://www.nasa.gov/topics/earth/index.html", Title: "NASA Earth Facts"}},
			Source:      "NASA",
		},
		{
			Text:        "Fact Check: The Earth is not flat. Extensive evidence from space exploration and gravity confirms its round shape.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://www.factcheck.org/2018/05/the-earth-is-not-flat/", Title: "FactCheck.org"}},
			Source:      "FactCheck.org",
		},
		{
			Text:        "There is no evidence that 5G networks cause COVID-19. Viruses cannot travel on radio waves.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://www.who.int/emergencies/diseases/novel-coronavirus-2019/advice-for-public/myth-busters", Title: "WHO Myth Busters"}},
			Source:      "WHO",
		},
		{
			Text:        "Vaccines differ from gene therapy and do not alter human DNA. mRNA vaccines teach cells to make protein.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://www.cdc.gov/coronavirus/2019-ncov/vaccines/facts.html", Title: "CDC Vaccine Facts"}},
			Source:      "CDC",
		},
		{
			Text:        "Climate change is real and primarily caused by human activities like burning fossil fuels.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://climate.nasa.gov/evidence/", Title: "NASA Climate Evidence"}},
			Source:      "NASA",
		},
		{
			Text:        "The curvature of the Earth is visible from high altitudes and space. Photographs from the ISS clearly show a round Earth.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://www.nasa.gov/audience/forstudents/5-8/features/nasa-knows/what-is-earth-58.html", Title: "NASA: What is Earth?"}},
			Source:      "NASA",
		},
		{
			Text:        "Ships disappear bottom-first over the horizon because the Earth is curved.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://www.britannica.com/demystified/is-the-earth-round", Title: "Britannica: Is Earth Round?"}},
			Source:      "Britannica",
		},
		{
			Text:        "Gravity pulls matter toward the center of mass, forming spheres. A flat Earth would be scientifically impossible.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://www.scientificamerican.com/article/what-would-happen-if-the-earth-were-actually-flat/", Title: "Scientific American: Flat Earth Physics"}},
			Source:      "Scientific American",
		},
		{
			Text:        "Historical circumnavigation by Magellan and modern air travel routes prove the Earth is a sphere.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://www.nationalgeographic.org/encyclopedia/circumnavigation/", Title: "National Geographic: Circumnavigation"}},
			Source:      "National Geographic",
		},
		{
			Text:        "Lunar eclipses cast a round shadow on the Moon, which is only possible if the Earth is round.",
			ClaimReview: []fetch.ClaimReview{{URL: "https://www.space.com/15684-lunar-eclipses.html", Title: "Space.com: Lunar Eclipses"}},
			Source:      "Space.com",
		},
	}
}
