package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/streamsync/subsync/internal/health"
	"github.com/streamsync/subsync/internal/models"
)

type fakeSyncService struct {
	lastRequest models.SyncRequest
	result      *models.SyncResult
}

func (s *fakeSyncService) Synchronize(_ context.Context, req models.SyncRequest) *models.SyncResult {
	s.lastRequest = req
	if s.result != nil {
		return s.result
	}
	return &models.SyncResult{Success: true, OffsetMs: 1500, Confidence: 0.95, Message: "ok"}
}

type fakeProber struct{ err error }

func (p fakeProber) Probe(context.Context) error { return p.err }

func newTestServer(svc *fakeSyncService) *httptest.Server {
	checker := health.NewChecker(fakeProber{}, fakeProber{}, fakeProber{}, time.Minute)
	return httptest.NewServer(NewRouter(svc, checker, nil, 10*time.Minute))
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s error = %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, payload
}

func TestSyncEndpoint(t *testing.T) {
	t.Parallel()
	svc := &fakeSyncService{result: &models.SyncResult{
		Success:        true,
		OffsetMs:       1500,
		SyncedSubtitle: "1\n00:00:02,500 --> 00:00:05,500\nHello.\n",
		Confidence:     0.95,
		Message:        "Synchronized successfully via ffsubsync. Offset: 1500ms",
	}}
	server := newTestServer(svc)
	defer server.Close()

	resp, payload := postJSON(t, server.URL+"/sync",
		`{"stream_url":"http://example.com/stream.mp4","subtitle":"1\n00:00:01,000 --> 00:00:04,000\nHello.\n","language":"en"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if payload["success"] != true {
		t.Errorf("success = %v, want true", payload["success"])
	}
	if payload["offset_ms"] != float64(1500) {
		t.Errorf("offset_ms = %v, want 1500", payload["offset_ms"])
	}
	if !svc.lastRequest.IncludeSubtitle {
		t.Error("sync endpoint must request the shifted subtitle")
	}
	if svc.lastRequest.Language != "en" {
		t.Errorf("Language = %q, want en", svc.lastRequest.Language)
	}
}

func TestOffsetEndpointStripsSubtitle(t *testing.T) {
	t.Parallel()
	svc := &fakeSyncService{}
	server := newTestServer(svc)
	defer server.Close()

	resp, payload := postJSON(t, server.URL+"/offset",
		`{"stream_url":"http://example.com/stream.mp4","subtitle":"1\n00:00:01,000 --> 00:00:04,000\nHello.\n"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if svc.lastRequest.IncludeSubtitle {
		t.Error("offset endpoint must not request the shifted subtitle")
	}
	if _, ok := payload["synced_subtitle"]; ok {
		t.Error("offset response must omit synced_subtitle")
	}
}

func TestSyncValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"invalid json", `{not json`, "invalid JSON body"},
		{"missing stream url", `{"subtitle":"1\n00:00:01,000 --> 00:00:02,000\na\n"}`, "stream_url is required"},
		{"missing subtitle", `{"stream_url":"http://example.com/s.mp4"}`, "subtitle is required"},
	}

	svc := &fakeSyncService{}
	server := newTestServer(svc)
	t.Cleanup(server.Close)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, payload := postJSON(t, server.URL+"/sync", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			if payload["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", payload["error"], tt.wantError)
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	server := newTestServer(&fakeSyncService{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var status models.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if status.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", status.Status)
	}
	if !status.FFmpeg || !status.Primary || !status.Fallback {
		t.Errorf("probes = %v/%v/%v, want all true", status.FFmpeg, status.Primary, status.Fallback)
	}
}

func TestRootEndpoint(t *testing.T) {
	t.Parallel()
	server := newTestServer(&fakeSyncService{})
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["service"] != serviceName {
		t.Errorf("service = %v, want %q", payload["service"], serviceName)
	}
	if payload["audio_duration_seconds"] != float64(600) {
		t.Errorf("audio_duration_seconds = %v, want 600", payload["audio_duration_seconds"])
	}
}
