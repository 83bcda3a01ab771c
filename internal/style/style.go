// Package style scores manipulative and low-credibility language patterns
// in claim text, independent of any retrieved evidence.
package style

import (
	"strings"

	"claimlens/internal/model"
)

// Red-flag phrases each add 0.15 to the risk score, capped at +0.6 total
var redFlags = []string{
	"shocking", "you won't believe", "secret", "exposed", "truth", "wake up",
	"sheeple", "poisoning", "control", "mind", "5g", "bio-resonance",
	"mitochondrial", "vibration", "frequency", "quantum", "hidden", "censored",
	"bioweapon", "agenda", "reset", "flat earth", "ice wall",
}

var causalKeywords = []string{
	"cause", "causes", "cure", "cures", "leads to", "results in", "inevitable",
	"undeniable", "must be", "proven", "kills", "destroys",
}

var emotionalKeywords = []string{
	"shocking", "terrifying", "unbelievable", "devastating", "exposed",
	"horror", "deadly", "poison", "bleach", "dangerous", "toxic",
}

var attributionKeywords = []string{
	"according to", "reported by", "stated by", "sources say", "experts say",
	"study shows",
}

var conspiracyKeywords = []string{
	"they don't want you to know", "hidden", "suppressed", "secret agenda",
	"truth about", "wake up", "mainstream media",
}

// Analyzer computes the heuristic style risk score, linguistic signals,
// and a verdict sentence
type Analyzer struct{}

// NewAnalyzer creates a new style analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scores the text in [0, 0.99] and attaches signals and a verdict
func (a *Analyzer) Analyze(text string) model.StyleAnalysis {
	lower := strings.ToLower(text)
	risk := 0.1

	// Red-flag lexicon
	foundFlags := 0
	for _, flag := range redFlags {
		if strings.Contains(lower, flag) {
			foundFlags++
		}
	}
	flagBoost := float64(foundFlags) * 0.15
	if flagBoost > 0.6 {
		flagBoost = 0.6
	}
	risk += flagBoost

	// Shouting
	capsRatio := upperRatio(text)
	switch {
	case capsRatio > 0.4:
		risk += 0.3
	case capsRatio > 0.15:
		risk += 0.1
	}

	// Punctuation abuse
	if strings.Count(text, "!") > 2 {
		risk += 0.2
	}

	signals := a.detectSignals(text, lower)
	for _, signal := range signals {
		switch signal.Name {
		case "Conspiracy Framing":
			risk += 0.25
		case "Emotional Loading":
			risk += 0.15
		case "Causal Absolutes":
			risk += 0.15
		case "Attribution Gap":
			risk += 0.10
		}
	}

	if risk > 0.99 {
		risk = 0.99
	}

	return model.StyleAnalysis{
		Score:   risk,
		Signals: signals,
		Verdict: a.verdict(signals, risk),
	}
}

// detectSignals runs the four signal detectors in a fixed order
func (a *Analyzer) detectSignals(text, lower string) []model.StyleSignal {
	var signals []model.StyleSignal

	if containsAny(lower, causalKeywords) {
		signals = append(signals, model.StyleSignal{
			Name:        "Causal Absolutes",
			Trigger:     "Absolute causal verbs",
			Explanation: "Uses absolute causal language that oversimplifies complex relationships.",
		})
	}

	if containsAny(lower, emotionalKeywords) {
		signals = append(signals, model.StyleSignal{
			Name:        "Emotional Loading",
			Trigger:     "Emotionally charged terms",
			Explanation: "Emotionally loaded terms increase persuasive impact without adding evidence.",
		})
	}

	// Only meaningful for text long enough to warrant a citation
	if !containsAny(lower, attributionKeywords) && len(strings.Fields(text)) > 10 {
		signals = append(signals, model.StyleSignal{
			Name:        "Attribution Gap",
			Trigger:     "Lack of citation",
			Explanation: "Lacks attribution to verifiable sources or reporting entities.",
		})
	}

	if containsAny(lower, conspiracyKeywords) {
		signals = append(signals, model.StyleSignal{
			Name:        "Conspiracy Framing",
			Trigger:     "Suppression narratives",
			Explanation: "Implicitly frames information as suppressed or hidden by powerful actors.",
		})
	}

	return signals
}

// verdict builds a one-sentence natural-language assessment from the
// detected signal combination
func (a *Analyzer) verdict(signals []model.StyleSignal, risk float64) string {
	if len(signals) == 0 {
		if risk > 0.5 {
			return "This claim uses subtle linguistic patterns often found in high-engagement content, though specific markers were not isolated."
		}
		return "This claim uses generally neutral language, facilitating objective verification."
	}

	names := make(map[string]bool, len(signals))
	for _, s := range signals {
		names[s.Name] = true
	}

	if names["Conspiracy Framing"] {
		return "This claim employs conspiracy framing and suppression narratives to discourage critical verification."
	}
	if names["Causal Absolutes"] && names["Attribution Gap"] {
		return "This claim makes definitive causal assertions without citing sources, which obscures the basis of the argument."
	}
	if names["Emotional Loading"] {
		return "This claim relies on emotionally charged language to bypass critical analysis."
	}

	return "This claim contains indicators of " + strings.ToLower(signals[0].Name) + " which may influence interpretation independent of the facts."
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func upperRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	upper := 0
	for _, c := range text {
		if c >= 'A' && c <= 'Z' {
			upper++
		}
	}
	return float64(upper) / float64(len(text))
}
