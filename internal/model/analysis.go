package model

// QualityNote qualifies how trustworthy the final risk score is,
// distinct from the score itself
type QualityNote string

const (
	NoteVerified     QualityNote = "Verified"
	NoteContested    QualityNote = "Contested - Conflicting Evidence"
	NoteWeakEvidence QualityNote = "Weak Evidence Match (View with Caution)"
	NoteHighRisk     QualityNote = "Unverified - High Risk Topic"
	NoteCaution      QualityNote = "Unverified - Exercise Caution"
	NoteInsufficient QualityNote = "Insufficient Evidence"
)

// StyleSignal is one linguistic marker detected by the style scorer
type StyleSignal struct {
	Name        string `json:"name"`
	Trigger     string `json:"trigger"`
	Explanation string `json:"explanation"`
}

// StyleAnalysis is the heuristic language-risk assessment of a claim,
// independent of any evidence. Score is in [0, 0.99].
type StyleAnalysis struct {
	Score   float64       `json:"score"`
	Signals []StyleSignal `json:"signals"`
	Verdict string        `json:"verdict"`
}

// HeatmapEntry is a per-token saliency weight in [0,1], original token order
type HeatmapEntry struct {
	Token string  `json:"token"`
	Score float64 `json:"score"`
}

// Meta describes the versions that produced a result
type Meta struct {
	AppVersion   string `json:"app_version"`
	ModelType    string `json:"model_type"`
	IndexVersion string `json:"index_version"`
}

// AnalysisResult is the sole output of one analysis task. It is constructed
// once, written once to the result cache, and never mutated after return.
// StyleRiskScore mirrors RiskScore for the UI; both hold the fused value.
type AnalysisResult struct {
	Text              string         `json:"text"`
	StyleRiskScore    float64        `json:"style_risk_score"`
	RiskScore         float64        `json:"risk_score"`
	Heatmap           []HeatmapEntry `json:"heatmap"`
	Evidence          []EvidenceItem `json:"evidence"`
	StanceSummary     StanceSummary  `json:"stance_summary"`
	Status            string         `json:"status"`
	QualityNote       QualityNote    `json:"quality_note"`
	LinguisticSignals []StyleSignal  `json:"linguistic_signals"`
	LinguisticVerdict string         `json:"linguistic_verdict"`
	Meta              Meta           `json:"meta"`
}
