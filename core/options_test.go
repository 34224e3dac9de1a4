package core

import (
	"net/http"
	"testing"
	"time"
)

func TestNewService_AppliesDefaults(t *testing.T) {
	svc := newTestService(t, testConfig())

	cfg := svc.Config()
	if cfg.ProjectID != "demo-project" {
		t.Fatalf("unexpected project id: %q", cfg.ProjectID)
	}
	if cfg.Endpoint != DefaultEndpoint {
		t.Fatalf("expected default endpoint, got %q", cfg.Endpoint)
	}
	if cfg.DatabaseID != DefaultDatabaseID {
		t.Fatalf("expected default database id, got %q", cfg.DatabaseID)
	}
	if cfg.Auth.TokenTTL != DefaultTokenTTL {
		t.Fatalf("expected default token ttl, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.RenewBefore != DefaultRenewBefore {
		t.Fatalf("expected default renew margin, got %v", cfg.Auth.RenewBefore)
	}

	deps := svc.Dependencies()
	if deps.HTTPClient == nil {
		t.Fatalf("expected default http client")
	}
	client, ok := deps.HTTPClient.(*http.Client)
	if !ok {
		t.Fatalf("expected *http.Client default, got %T", deps.HTTPClient)
	}
	if client.Timeout != DefaultRequestTimeout {
		t.Fatalf("expected default request timeout, got %v", client.Timeout)
	}
	if deps.MetricsRecorder == nil {
		t.Fatalf("expected nop metrics recorder default")
	}
	if deps.Signer == nil {
		t.Fatalf("expected bearer signer default")
	}
}

func TestNewService_RequiresTokenSource(t *testing.T) {
	_, err := NewService(testConfig(),
		WithLogger(stubLogger{}),
		WithDocumentCodec(stubFieldCodec{}),
	)
	if err == nil {
		t.Fatalf("expected failure without a token source")
	}
}

func TestNewService_RequiresDocumentCodec(t *testing.T) {
	_, err := NewService(testConfig(),
		WithLogger(stubLogger{}),
		WithTokenSource(&stubTokenSource{token: "token_1"}),
	)
	if err == nil {
		t.Fatalf("expected failure without a document codec")
	}
}

func TestNewService_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NewService(cfg,
		WithLogger(stubLogger{}),
		WithTokenSource(&stubTokenSource{token: "token_1"}),
		WithDocumentCodec(stubFieldCodec{}),
	)
	if err == nil {
		t.Fatalf("expected validation failure for missing project id")
	}
}

func TestNewService_ConfigProviderContributesLayer(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"project_id": "loaded-project",
		"endpoint":   "https://loaded.example",
	}})

	svc := newTestService(t, Config{}, WithConfigProvider(provider))

	cfg := svc.Config()
	if cfg.ProjectID != "loaded-project" {
		t.Fatalf("expected loaded project id, got %q", cfg.ProjectID)
	}
	if cfg.Endpoint != "https://loaded.example" {
		t.Fatalf("expected loaded endpoint, got %q", cfg.Endpoint)
	}
	if cfg.DatabaseID != DefaultDatabaseID {
		t.Fatalf("defaults must fill the unset keys, got %q", cfg.DatabaseID)
	}
}

func TestNewService_RuntimeConfigWinsOverLoaded(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"project_id": "loaded-project",
		"endpoint":   "https://loaded.example",
	}})

	runtime := Config{ProjectID: "runtime-project"}
	svc := newTestService(t, runtime, WithConfigProvider(provider))

	cfg := svc.Config()
	if cfg.ProjectID != "runtime-project" {
		t.Fatalf("runtime layer must win, got %q", cfg.ProjectID)
	}
	if cfg.Endpoint != "https://loaded.example" {
		t.Fatalf("loaded layer must fill what runtime leaves unset, got %q", cfg.Endpoint)
	}
}

func TestNewService_HonorsInjectedHTTPClient(t *testing.T) {
	custom := &http.Client{Timeout: 5 * time.Second}
	svc := newTestService(t, testConfig(), WithHTTPClient(custom))

	if svc.Dependencies().HTTPClient != custom {
		t.Fatalf("expected injected http client to be used")
	}
}
