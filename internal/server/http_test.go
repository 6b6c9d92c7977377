package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eenness/Mix2Go/internal/config"
	"github.com/eenness/Mix2Go/internal/display"
	"github.com/eenness/Mix2Go/internal/monitor"
)

func testServer(t *testing.T) *HTTPServer {
	t.Helper()

	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	printer := display.NewPrinter(io.Discard, cfg.Display.MeterWidth, cfg.Meter.DBFloor)
	session := monitor.NewSession(cfg, logger, printer, nil)

	return NewHTTPServer(cfg.HTTP, logger, cfg, session)
}

func TestHandleHealth(t *testing.T) {
	h := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %v", body["status"])
	}
}

func TestHandleStats(t *testing.T) {
	h := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	h.handleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var snap monitor.StatsSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if snap.PacketsReceived != 0 {
		t.Errorf("Expected fresh session with 0 packets, got %d", snap.PacketsReceived)
	}
}

func TestHandleStatsRejectsPost(t *testing.T) {
	h := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/stats", nil)
	rec := httptest.NewRecorder()
	h.handleStats(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}
