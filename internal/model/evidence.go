package model

// StanceLabel is the relationship an evidence item expresses toward a claim
type StanceLabel string

const (
	StanceSupports StanceLabel = "supports" // Evidence corroborates the claim
	StanceRefutes  StanceLabel = "refutes"  // Evidence contradicts the claim
	StanceNeutral  StanceLabel = "neutral"  // Evidence is related but non-committal
)

// StanceResult is a single stance classification with its confidence distribution.
// Immutable once produced.
type StanceResult struct {
	Label        StanceLabel  `json:"label"`
	Confidence   float64      `json:"confidence"`
	Distribution Distribution `json:"distribution"`
}

// Distribution holds per-class probabilities (sums to ~1)
type Distribution struct {
	Refutes  float64 `json:"refutes"`
	Supports float64 `json:"supports"`
	Neutral  float64 `json:"neutral"`
}

// Credibility is a coarse reputation class for an evidence source domain
type Credibility string

const (
	CredibilityHigh    Credibility = "high"
	CredibilityLow     Credibility = "low"
	CredibilityNeutral Credibility = "neutral"
	CredibilityUnknown Credibility = "unknown" // No URL to judge
)

// EvidenceItem is one retrieved or backfilled piece of evidence.
// Score is a vector distance: lower is better. Stance and Credibility are
// attached by the classification stage and absent until then.
type EvidenceItem struct {
	Text        string        `json:"text"`
	URL         string        `json:"url,omitempty"`
	Score       float64       `json:"score"`
	Stance      *StanceResult `json:"stance,omitempty"`
	Credibility Credibility   `json:"credibility,omitempty"`
}

// StanceSummary tallies stance labels across the final evidence set
type StanceSummary struct {
	Supports int `json:"supports"`
	Refutes  int `json:"refutes"`
	Neutral  int `json:"neutral"`
}

// Lane is a routing outcome for evidence backfill
type Lane string

const (
	// LaneA targets a specific, checkable claim (fact-check lookup first)
	LaneA Lane = "lane_a"
	// LaneB targets a general news event (broad news lookup)
	LaneB Lane = "lane_b"
)
