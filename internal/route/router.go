// Package route classifies claim text into an evidence-backfill lane.
package route

import (
	"log/slog"
	"regexp"
	"strings"

	"claimlens/internal/model"
)

// Cues for specific, disputable claims (lane A)
var claimPatterns = compile([]string{
	`\bcure\b`, `\bprevent\b`, `\bsecret\b`, `\bhoax\b`,
	`\bfake\b`, `\bconspiracy\b`, `\breal\b`, `\btruth about\b`,
	`\bviral\b`, `\bvideo shows\b`, `\bdied\b`, `\balive\b`,
	`\bdangerous\b`, `\bunsafe\b`, `\bkill\b`, `\bpoison\b`, `\brisk\b`,
})

// Cues for general news events (lane B)
var eventPatterns = compile([]string{
	`\battacked\b`, `\binvaded\b`, `\bwar\b`, `\belection\b`,
	`\bwon\b`, `\blost\b`, `\bhappened\b`, `\bearthquake\b`,
	`\bhurricane\b`, `\bprotest\b`, `\bsummit\b`, `\bmeeting\b`,
})

func compile(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// Router routes claim text to the fact-check lane or the news lane
type Router struct {
	logger *slog.Logger
}

// NewRouter creates a new lane router
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{logger: logger}
}

// Route scores the lowercased text against both cue sets by counting
// distinct pattern matches. Claim cues win any tie: specific rumors take
// priority even when event cues also match. Ambiguous text defaults to
// lane A so it fails toward the fact-check path.
func (r *Router) Route(text string) model.Lane {
	lower := strings.ToLower(text)

	claimScore := countMatches(claimPatterns, lower)
	eventScore := countMatches(eventPatterns, lower)

	r.logger.Info("route scored", "claim_score", claimScore, "event_score", eventScore)

	if claimScore > 0 {
		return model.LaneA
	}
	if eventScore > 0 {
		return model.LaneB
	}
	return model.LaneA
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	count := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			count++
		}
	}
	return count
}
