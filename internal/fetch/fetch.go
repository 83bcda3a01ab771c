// Package fetch implements the evidence backfill fetchers: a targeted
// fact-check lookup and a broad trusted-news lookup, both normalized to a
// common claim shape.
package fetch

// ClaimReview is one published review of a claim
type ClaimReview struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Claim is the normalized shape shared by both fetchers
type Claim struct {
	Text         string        `json:"text"`
	Claimant     string        `json:"claimant,omitempty"`
	ClaimDate    string        `json:"claimDate,omitempty"`
	ClaimReview  []ClaimReview `json:"claimReview,omitempty"`
	Source       string        `json:"source,omitempty"`
	LanguageCode string        `json:"languageCode,omitempty"`
}

// URL returns the claim's primary review URL, or empty when unreviewed
func (c Claim) URL() string {
	if len(c.ClaimReview) == 0 {
		return ""
	}
	return c.ClaimReview[0].URL
}
