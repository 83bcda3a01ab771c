package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"claimlens/internal/model"
	"claimlens/internal/worker"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, text string) (*model.AnalysisResult, error) {
	return &model.AnalysisResult{
		Text:      text,
		RiskScore: 10,
		Status:    "completed",
	}, nil
}

func newTestServer(t *testing.T, perMinute int) (*Server, *worker.Manager) {
	t.Helper()
	manager := worker.NewManager(stubAnalyzer{}, 2, slog.New(slog.DiscardHandler))
	manager.Start()
	t.Cleanup(manager.Shutdown)

	cfg := model.ServerConfig{Addr: ":0", AnalyzePerMinute: perMinute}
	return NewServer(manager, cfg, slog.New(slog.DiscardHandler)), manager
}

func postAnalyze(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	s, _ := newTestServer(t, 100)

	rec := postAnalyze(t, s, `{"text": "the earth is flat"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Error("job_id is empty")
	}
	if resp.Status != "submitted" {
		t.Errorf("status = %q, want submitted", resp.Status)
	}

	// The job eventually completes and its status is readable
	deadline := time.Now().Add(2 * time.Second)
	for {
		req := httptest.NewRequest(http.MethodGet, "/api/status/"+resp.JobID, nil)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint = %d: %s", rec.Code, rec.Body.String())
		}

		var job worker.Job
		if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
			t.Fatalf("decode job: %v", err)
		}
		if job.Status == worker.StatusCompleted {
			if job.Result == nil || job.Result.RiskScore != 10 {
				t.Errorf("result = %+v", job.Result)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck at %q", job.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAnalyzeRejectsMissingText(t *testing.T) {
	s, _ := newTestServer(t, 100)

	for _, body := range []string{`{}`, `{"text": ""}`, `{"text": "   "}`, `not json`} {
		rec := postAnalyze(t, s, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestStatusUnknownJob(t *testing.T) {
	s, _ := newTestServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/status/does-not-exist", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Version != model.AppVersion {
		t.Errorf("response = %+v", resp)
	}
}

func TestAnalyzeRateLimited(t *testing.T) {
	s, _ := newTestServer(t, 3)

	var limited bool
	for i := 0; i < 4; i++ {
		rec := postAnalyze(t, s, `{"text": "claim"}`)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
		if rec.Code != http.StatusAccepted {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	if !limited {
		t.Error("burst of 4 requests against a 3/min limit was never limited")
	}

	// The health endpoint is not rate limited
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}
