package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Name != "datalogengine-mcp" {
		t.Errorf("expected default server name, got %q", cfg.Server.Name)
	}
	if cfg.Server.Version != "0.1.0" {
		t.Errorf("expected default version, got %q", cfg.Server.Version)
	}
	if cfg.Engine.Provenance != "minmaxprob" {
		t.Errorf("expected default provenance minmaxprob, got %q", cfg.Engine.Provenance)
	}
	if cfg.Engine.IterationLimit != 0 {
		t.Errorf("expected default iteration_limit 0, got %d", cfg.Engine.IterationLimit)
	}
	if !cfg.MCP.Enable {
		t.Error("expected MCP enabled by default")
	}
	if cfg.MCP.SSEPort != 0 {
		t.Errorf("expected default sse_port 0 (stdio), got %d", cfg.MCP.SSEPort)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := `
server:
  name: my-engine
  version: 1.2.3
engine:
  provenance: addmultprob
  iteration_limit: 50
mcp:
  enable: false
  sse_port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Name != "my-engine" {
		t.Errorf("expected server.name my-engine, got %q", cfg.Server.Name)
	}
	if cfg.Engine.Provenance != "addmultprob" {
		t.Errorf("expected provenance addmultprob, got %q", cfg.Engine.Provenance)
	}
	if cfg.Engine.IterationLimit != 50 {
		t.Errorf("expected iteration_limit 50, got %d", cfg.Engine.IterationLimit)
	}
	if cfg.MCP.Enable {
		t.Error("expected mcp.enable false")
	}
	if cfg.MCP.SSEPort != 9000 {
		t.Errorf("expected sse_port 9000, got %d", cfg.MCP.SSEPort)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server: [broken"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"missing server name", func(c *Config) { c.Server.Name = "" }, true},
		{"missing provenance", func(c *Config) { c.Engine.Provenance = "" }, true},
		{"unknown provenance", func(c *Config) { c.Engine.Provenance = "fuzzy" }, true},
		{"negative iteration limit", func(c *Config) { c.Engine.IterationLimit = -1 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEngineConfig_RoundLimit(t *testing.T) {
	e := EngineConfig{IterationLimit: 10}
	if e.RoundLimit() != 10 {
		t.Errorf("expected 10, got %d", e.RoundLimit())
	}
	e = EngineConfig{IterationLimit: 0}
	if e.RoundLimit() != 0 {
		t.Errorf("expected 0 (unbounded), got %d", e.RoundLimit())
	}
}

func TestEngineConfig_IsEarlyDiscardEnabled(t *testing.T) {
	e := EngineConfig{}
	if !e.IsEarlyDiscardEnabled() {
		t.Error("expected early discard enabled by default")
	}
	disabled := false
	e.EarlyDiscard = &disabled
	if e.IsEarlyDiscardEnabled() {
		t.Error("expected early discard disabled when explicitly set false")
	}
}

func TestEngineConfig_Seed(t *testing.T) {
	e := EngineConfig{}
	if e.Seed() != 1 {
		t.Errorf("expected default seed 1, got %d", e.Seed())
	}
	e.RandomSeed = 42
	if e.Seed() != 42 {
		t.Errorf("expected seed 42, got %d", e.Seed())
	}
}

func TestServerConfig_StartupTimeout(t *testing.T) {
	s := ServerConfig{}
	if s.StartupTimeout() != 30*time.Second {
		t.Errorf("expected 30s, got %v", s.StartupTimeout())
	}
}
