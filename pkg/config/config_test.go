package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
environment: test
server:
  port: 8080
model:
  backend: local
  path: artifacts/model.json
  encoders_path: artifacts/encoders.json
audit:
  backend: none
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model.Backend != "local" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing environment", "model:\n  backend: local\n  path: m\n  encoders_path: e\n"},
		{"missing model backend", "environment: test\n"},
		{"bad model backend", "environment: test\nmodel:\n  backend: onnx\n"},
		{"local without path", "environment: test\nmodel:\n  backend: local\n  encoders_path: e\n"},
		{"http without url", "environment: test\nmodel:\n  backend: http\n  encoders_path: e\n"},
		{"bad audit backend", "environment: test\nmodel:\n  backend: http\n  url: u\n  encoders_path: e\naudit:\n  backend: s3\n"},
	}
	for _, c := range cases {
		if _, err := Load(writeConfig(t, c.body)); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MODEL_BACKEND", "http")
	t.Setenv("MODEL_URL", "http://model:9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model.Backend != "http" || cfg.Model.URL != "http://model:9000" {
		t.Errorf("model overrides not applied: %+v", cfg.Model)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
}
