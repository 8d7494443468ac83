package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("PORT", "9090")
	t.Setenv("NOTIFY_WEBHOOK_URLS", "https://hooks.example/a, https://hooks.example/b")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.ProjectID != "test-project" {
		t.Errorf("ProjectID = %s, want test-project", cfg.ProjectID)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if len(cfg.WebhookURLs) != 2 || cfg.WebhookURLs[1] != "https://hooks.example/b" {
		t.Errorf("WebhookURLs = %v", cfg.WebhookURLs)
	}
	if cfg.NotifyMaxAttempts != 3 {
		t.Errorf("NotifyMaxAttempts = %d, want default 3", cfg.NotifyMaxAttempts)
	}
	if cfg.RotationCheckEvery != time.Hour {
		t.Errorf("RotationCheckEvery = %s, want default 1h", cfg.RotationCheckEvery)
	}
}

func TestLoad_MissingProjectID(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail when GOOGLE_CLOUD_PROJECT is not set")
	}
}

func TestLoad_CustomRotationInterval(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("ROTATION_CHECK_INTERVAL", "15m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.RotationCheckEvery != 15*time.Minute {
		t.Errorf("RotationCheckEvery = %s, want 15m", cfg.RotationCheckEvery)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"ROTATION_CHECK_INTERVAL": "often",
		"NOTIFY_MAX_ATTEMPTS":     "0",
		"REQUESTS_PER_SECOND":     "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail for %s=%q", key, val)
			}
		})
	}
}
