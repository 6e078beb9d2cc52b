package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/echoadmin/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("echoadmin-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "echoadmin-test" {
		t.Errorf("expected service name from argument, got %q", cfg.Telemetry.ServiceName)
	}
	if cfg.Upstream.TimeoutDuration().Seconds() != 10 {
		t.Errorf("expected 10s upstream timeout, got %v", cfg.Upstream.TimeoutDuration())
	}
	if cfg.Upload.PutTimeoutDuration().Minutes() != 5 {
		t.Errorf("expected 5m put timeout, got %v", cfg.Upload.PutTimeoutDuration())
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ECHOADMIN_UPSTREAM_BASE_URL", "https://api.example.test")
	t.Setenv("ECHOADMIN_SERVER_PORT", "9090")

	cfg, err := config.Load("echoadmin-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Upstream.BaseURL != "https://api.example.test" {
		t.Errorf("expected env base url, got %q", cfg.Upstream.BaseURL)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestLoad_VocabularyFromEnv(t *testing.T) {
	t.Setenv("ECHOADMIN_VOCABULARY_COMPLAINT_PENDING", "open")
	t.Setenv("ECHOADMIN_VOCABULARY_ECHO_TYPES", "text,image")

	cfg, err := config.Load("echoadmin-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Vocab.ComplaintPending != "open" {
		t.Errorf("expected pending label from env, got %q", cfg.Vocab.ComplaintPending)
	}
	if len(cfg.Vocab.EchoTypes) != 2 || cfg.Vocab.EchoTypes[1] != "image" {
		t.Errorf("expected echo types [text image], got %v", cfg.Vocab.EchoTypes)
	}
	if cfg.Vocab.ComplaintResolved != "" || len(cfg.Vocab.Severities) != 0 {
		t.Errorf("unset entries should stay empty, got %+v", cfg.Vocab)
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &config.Config{
		Map: config.MapConfig{North: 1, South: 2, West: 5, East: 5},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "upstream.base_url", "map.north", "map.east", "upload.session_ttl", "upload.put_timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_RadiusReplacesEdges(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: 8080, ReadTimeout: 1, WriteTimeout: 1},
		Upstream: config.UpstreamConfig{BaseURL: "http://x", Timeout: 1},
		Map:      config.MapConfig{CenterLat: 37.56, CenterLon: 126.97, RadiusM: 5000, ImageWidth: 10, ImageHeight: 10},
		Upload:   config.UploadConfig{SessionTTL: 60, MaxFileMB: 1, PutTimeout: 30},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
