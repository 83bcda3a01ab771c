package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Search results</title>
    <item>
      <title>Major earthquake strikes the region - Example News</title>
      <link>https://news.example/quake</link>
      <pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
      <source url="https://news.example">Example News</source>
    </item>
    <item>
      <title>&lt;b&gt;Markets&lt;/b&gt; rally after announcement</title>
      <link>https://news.example/markets</link>
      <pubDate>Mon, 24 Aug 2026 09:00:00 GMT</pubDate>
      <source url="https://news.example"></source>
    </item>
  </channel>
</rss>`

func TestNewsSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "earthquake report" {
			t.Errorf("q = %q, want earthquake report", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testFeed)
	}))
	defer server.Close()

	c := NewNewsClient(server.URL, "claimlens-test/1.0", time.Second, nil, nil, slog.New(slog.DiscardHandler))

	claims, err := c.Search(context.Background(), "earthquake report")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("claims = %d, want 2", len(claims))
	}

	first := claims[0]
	if first.Text != "Major earthquake strikes the region - Example News" {
		t.Errorf("text = %q", first.Text)
	}
	if first.URL() != "https://news.example/quake" {
		t.Errorf("url = %q", first.URL())
	}
	if first.Source != "Example News" {
		t.Errorf("source = %q, want Example News", first.Source)
	}
	if first.LanguageCode != "en" {
		t.Errorf("languageCode = %q, want en", first.LanguageCode)
	}

	// Embedded markup is stripped; a missing source falls back
	second := claims[1]
	if second.Text != "Markets rally after announcement" {
		t.Errorf("text = %q, want markup stripped", second.Text)
	}
	if second.Source != "Google News" {
		t.Errorf("source = %q, want the Google News fallback", second.Source)
	}
}

func TestNewsSearchCapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss><channel>`)
		for i := 0; i < 25; i++ {
			fmt.Fprintf(w, `<item><title>story %d</title><link>https://news.example/%d</link></item>`, i, i)
		}
		fmt.Fprint(w, `</channel></rss>`)
	}))
	defer server.Close()

	c := NewNewsClient(server.URL, "claimlens-test/1.0", time.Second, nil, nil, slog.New(slog.DiscardHandler))

	claims, err := c.Search(context.Background(), "busy topic")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(claims) != 10 {
		t.Errorf("claims = %d, want capped at 10", len(claims))
	}
}

func TestNewsSearchFeedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewNewsClient(server.URL, "claimlens-test/1.0", time.Second, nil, nil, slog.New(slog.DiscardHandler))

	if _, err := c.Search(context.Background(), "anything"); err == nil {
		t.Fatal("Search returned nil error on HTTP 503")
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain title", "plain title"},
		{"<b>bold</b> title", "bold title"},
		{"a &amp; b", "a & b"},
		{"  padded  ", "padded"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := stripTags(tt.in); got != tt.want {
			t.Errorf("stripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
