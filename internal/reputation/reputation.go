// Package reputation classifies evidence source domains into coarse
// credibility classes using curated lists.
package reputation

import (
	"strings"

	"claimlens/internal/model"
)

// Checker classifies source URLs by domain
type Checker struct {
	highCredibility []string
	lowCredibility  []string
}

// NewChecker creates a checker with the curated default lists
func NewChecker() *Checker {
	return &Checker{
		highCredibility: []string{
			"reuters.com", "apnews.com", "bbc.com", "npr.org", "pbs.org",
			"who.int", "cdc.gov", "nature.com", "sciencemag.org",
		},
		lowCredibility: []string{
			"infowars.com", "newsmax.com", "dailymail.co.uk", "rt.com",
			"sputniknews.com", "breitbart.com", "beforeitsnews.com",
		},
	}
}

// Check returns the credibility class for a source URL. An empty URL is
// unknown; any domain not on either list is neutral.
func (c *Checker) Check(url string) model.Credibility {
	if url == "" {
		return model.CredibilityUnknown
	}

	domain := strings.ToLower(url)
	for _, d := range c.highCredibility {
		if strings.Contains(domain, d) {
			return model.CredibilityHigh
		}
	}
	for _, d := range c.lowCredibility {
		if strings.Contains(domain, d) {
			return model.CredibilityLow
		}
	}
	return model.CredibilityNeutral
}
