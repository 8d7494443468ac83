package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ProjectID string
	Port      string

	// WebhookURLs receive notification events. Empty means notifications are
	// disabled; the services still run.
	WebhookURLs        []string
	NotifyMaxAttempts  int
	RotationCheckEvery time.Duration

	// RequestsPerSecond caps the whole HTTP surface; bursts of twice the rate
	// are allowed.
	RequestsPerSecond float64
}

func Load() (*Config, error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT environment variable is required but not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	var webhookURLs []string
	if raw := os.Getenv("NOTIFY_WEBHOOK_URLS"); raw != "" {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				webhookURLs = append(webhookURLs, u)
			}
		}
	}
	if len(webhookURLs) == 0 {
		slog.Warn("NOTIFY_WEBHOOK_URLS not set, notifications will be skipped")
	}

	notifyMaxAttempts := 3
	if v := os.Getenv("NOTIFY_MAX_ATTEMPTS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid NOTIFY_MAX_ATTEMPTS %q", v)
		}
		notifyMaxAttempts = parsed
	}

	rotationCheckStr := os.Getenv("ROTATION_CHECK_INTERVAL")
	if rotationCheckStr == "" {
		rotationCheckStr = "1h"
	}
	rotationCheckEvery, err := time.ParseDuration(rotationCheckStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ROTATION_CHECK_INTERVAL %q: %w", rotationCheckStr, err)
	}

	requestsPerSecond := 25.0
	if v := os.Getenv("REQUESTS_PER_SECOND"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid REQUESTS_PER_SECOND %q", v)
		}
		requestsPerSecond = parsed
	}

	return &Config{
		ProjectID:          projectID,
		Port:               port,
		WebhookURLs:        webhookURLs,
		NotifyMaxAttempts:  notifyMaxAttempts,
		RotationCheckEvery: rotationCheckEvery,
		RequestsPerSecond:  requestsPerSecond,
	}, nil
}
