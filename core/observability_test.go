package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServiceObservability_CreateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(StoredDocument{
			Name: "projects/demo-project/databases/(default)/documents/users/doc_1",
		})
	}))
	defer server.Close()

	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	cfg := testConfig()
	cfg.Endpoint = server.URL
	svc := newTestService(t, cfg,
		WithMetricsRecorder(metrics),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
	)

	if _, err := svc.CreateDocument(context.Background(), "users", Record{"name": TextValue("Ali")}); err != nil {
		t.Fatalf("create document: %v", err)
	}

	if !hasCounter(metrics.counters, "docstore.create_document.total", "success") {
		t.Fatalf("expected create success counter")
	}
	if !hasHistogram(metrics.histograms, "docstore.create_document.duration_ms", "success") {
		t.Fatalf("expected create duration histogram")
	}
	if !hasLog(logger.snapshot(), "info", "create_document succeeded", "create_document") {
		t.Fatalf("expected create succeeded structured log")
	}
}

func TestServiceObservability_ListFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	cfg := testConfig()
	cfg.Endpoint = server.URL
	svc := newTestService(t, cfg,
		WithMetricsRecorder(metrics),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
	)

	if _, err := svc.ListDocuments(context.Background(), "users"); err == nil {
		t.Fatalf("expected list failure")
	}

	if !hasCounter(metrics.counters, "docstore.list_documents.total", "failure") {
		t.Fatalf("expected list failure counter")
	}
	if !hasLog(logger.snapshot(), "error", "list_documents failed", "list_documents") {
		t.Fatalf("expected list failed structured log")
	}
}

func TestServiceObservability_DurationUsesInjectedClock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ticks := 0
	clock := func() time.Time {
		ticks++
		if ticks == 1 {
			return start
		}
		return start.Add(250 * time.Millisecond)
	}

	metrics := &captureMetricsRecorder{}
	cfg := testConfig()
	cfg.Endpoint = server.URL
	svc := newTestService(t, cfg,
		WithMetricsRecorder(metrics),
		WithClock(clock),
	)

	if _, err := svc.ListDocuments(context.Background(), "users"); err != nil {
		t.Fatalf("list documents: %v", err)
	}

	found := false
	for _, histogram := range metrics.histograms {
		if histogram.name != "docstore.list_documents.duration_ms" {
			continue
		}
		found = true
		if histogram.value != 250 {
			t.Fatalf("expected duration from the injected clock, got %v", histogram.value)
		}
	}
	if !found {
		t.Fatalf("expected duration histogram, got %#v", metrics.histograms)
	}
}

func TestServiceObservability_TagsCarryCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	defer server.Close()

	metrics := &captureMetricsRecorder{}
	cfg := testConfig()
	cfg.Endpoint = server.URL
	svc := newTestService(t, cfg, WithMetricsRecorder(metrics))

	if _, err := svc.ListDocuments(context.Background(), "users"); err != nil {
		t.Fatalf("list documents: %v", err)
	}

	found := false
	for _, counter := range metrics.counters {
		if counter.name == "docstore.list_documents.total" && counter.tags["collection"] == "users" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected collection tag on operation counter, got %#v", metrics.counters)
	}
}
