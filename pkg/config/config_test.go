package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `environment: test
server:
  port: 9090
providers:
  openai:
    api_key: test-key
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("expected port from file, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("expected default read timeout, got %v", c.Server.ReadTimeout)
	}
	if c.Assistant.Synthesis.MaxContinuations != 2 {
		t.Fatalf("expected default continuation cap, got %d", c.Assistant.Synthesis.MaxContinuations)
	}
}

func TestLoadWithEnvOverridesServerPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")

	c, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 7070 {
		t.Fatalf("expected SERVER_PORT override, got %d", c.Server.Port)
	}
}

func TestLoadWithEnvKeepsFilePortWhenUnsetOrInvalid(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	c, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("expected file port preserved, got %d", c.Server.Port)
	}
}

func TestValidateRejectsMissingReasonerKey(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: test\n"))
	if err == nil {
		t.Fatalf("expected validation error without any reasoning api key")
	}
}
