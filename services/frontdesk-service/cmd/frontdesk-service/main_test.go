package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/md-rashed-zaman/frontdesk/libs/httpx"
	"github.com/md-rashed-zaman/frontdesk/libs/runtime"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/handlers"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/reservations"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/storage"
)

func TestLoadSettingsDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "REDIS_ADDR", "RATE_LIMIT_PER_MINUTE", "TIMELINE_DEFAULT_SPAN_DAYS", "SEED_ROOMS", "HTTP_BODY_LIMIT_KB"} {
		t.Setenv(k, "")
	}
	cfg, err := loadSettings()
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if cfg.port != "8080" || cfg.defaultSpan != 14 || cfg.rateLimit != 600 || cfg.bodyLimit != 64<<10 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.seedRooms != storage.DefaultSeedRooms || cfg.requestTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadSettingsRejectsBadValues(t *testing.T) {
	t.Setenv("TIMELINE_DEFAULT_SPAN_DAYS", "0")
	if _, err := loadSettings(); err == nil {
		t.Fatal("expected error for zero span")
	}
	t.Setenv("TIMELINE_DEFAULT_SPAN_DAYS", "")
	t.Setenv("PORT", "http")
	if _, err := loadSettings(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestBuildHandlerServesSeededHotel(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg, err := loadSettings()
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	rooms, err := storage.ParseSeedRooms(storage.DefaultSeedRooms)
	if err != nil {
		t.Fatalf("ParseSeedRooms: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := runtime.NewBaseMuxWithReady()
	handlers.NewFrontDeskHandler(reservations.NewService(storage.NewMemory(rooms, nil), logger), logger, cfg.defaultSpan).Register(mux)
	h := buildHandler(mux, logger, cfg, httpx.NewRateLimiter(1, time.Minute).Middleware())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rooms/available?check_in=2024-05-01&check_out=2024-05-03&room_type=suite", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get(httpx.RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/timeline", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected the limiter to apply, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz to bypass the limiter, got %d", rec.Code)
	}
}
