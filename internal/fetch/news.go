package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// NewsClient queries a news RSS search feed (lane B: broad trusted-news
// lookups for general events). Results are normalized to the fact-check
// claim shape so ingestion handles both fetchers identically.
type NewsClient struct {
	rssURL     string
	maxItems   int
	httpClient *http.Client
	limiter    *Limiter
	robots     *RobotsChecker
	userAgent  string
	logger     *slog.Logger
}

// NewNewsClient creates a new trusted-news fetcher
func NewNewsClient(rssURL, userAgent string, timeout time.Duration, limiter *Limiter, robots *RobotsChecker, logger *slog.Logger) *NewsClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsClient{
		rssURL:   rssURL,
		maxItems: 10,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:   limiter,
		robots:    robots,
		userAgent: userAgent,
		logger:    logger,
	}
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  string `xml:"source"`
}

// Search queries the RSS feed and returns up to maxItems normalized claims
func (c *NewsClient) Search(ctx context.Context, query string) ([]Claim, error) {
	searchURL := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", c.rssURL, url.QueryEscape(query))

	if c.robots != nil {
		allowed, err := c.robots.CanFetch(ctx, searchURL)
		if err == nil && !allowed {
			c.logger.Warn("news feed disallowed by robots.txt", "url", c.rssURL)
			return nil, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, searchURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news feed returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	results := make([]Claim, 0, c.maxItems)
	for _, item := range feed.Channel.Items {
		if len(results) >= c.maxItems {
			break
		}

		title := stripTags(item.Title)
		source := stripTags(item.Source)
		if source == "" {
			source = "Google News"
		}

		results = append(results, Claim{
			Text:      title,
			Claimant:  source,
			ClaimDate: item.PubDate,
			ClaimReview: []ClaimReview{
				{URL: item.Link, Title: title},
			},
			Source:       source,
			LanguageCode: "en",
		})
	}

	c.logger.Info("news search complete", "query", query, "results", len(results))
	return results, nil
}

// stripTags removes markup that feeds embed inside titles and source names
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.WriteString(tokenizer.Token().Data)
		}
	}
	return strings.TrimSpace(b.String())
}
