package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDiscoverWorkspace_Found(t *testing.T) {
	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, WorkspaceDirName)
	if err := os.MkdirAll(wsDir, 0755); err != nil {
		t.Fatalf("failed to create workspace dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(wsDir, WorkspaceConfigFile), []byte("server:\n  name: test\n"), 0644); err != nil {
		t.Fatalf("failed to write workspace config: %v", err)
	}

	result, err := DiscoverWorkspace(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != tmpDir {
		t.Errorf("expected %q, got %q", tmpDir, result)
	}
}

func TestDiscoverWorkspace_WalkUp(t *testing.T) {
	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, WorkspaceDirName)
	if err := os.MkdirAll(wsDir, 0755); err != nil {
		t.Fatalf("failed to create workspace dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(wsDir, WorkspaceConfigFile), []byte("server:\n  name: test\n"), 0644); err != nil {
		t.Fatalf("failed to write workspace config: %v", err)
	}

	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dirs: %v", err)
	}

	result, err := DiscoverWorkspace(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != tmpDir {
		t.Errorf("expected %q, got %q", tmpDir, result)
	}
}

func TestDiscoverWorkspace_NotFound(t *testing.T) {
	tmpDir := t.TempDir()

	result, err := DiscoverWorkspace(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestDiscoverWorkspace_MaxDepth(t *testing.T) {
	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, WorkspaceDirName)
	if err := os.MkdirAll(wsDir, 0755); err != nil {
		t.Fatalf("failed to create workspace dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(wsDir, WorkspaceConfigFile), []byte("server:\n  name: test\n"), 0644); err != nil {
		t.Fatalf("failed to write workspace config: %v", err)
	}

	parts := make([]string, MaxSearchDepth+2)
	parts[0] = tmpDir
	for i := 1; i <= MaxSearchDepth+1; i++ {
		parts[i] = "d"
	}
	deepPath := filepath.Join(parts...)
	if err := os.MkdirAll(deepPath, 0755); err != nil {
		t.Fatalf("failed to create deep path: %v", err)
	}

	result, err := DiscoverWorkspace(deepPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "" {
		t.Errorf("expected empty string (beyond max depth), got %q", result)
	}
}

func TestLoadWithWorkspace_DefaultsOnly(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, wsDir, err := LoadWithWorkspace("", WorkspaceOptions{Disable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wsDir != "" {
		t.Errorf("expected empty workspace dir, got %q", wsDir)
	}
	if cfg.Server.Name != "datalogengine-mcp" {
		t.Errorf("expected default server name, got %q", cfg.Server.Name)
	}
	if cfg.MCP.SSEPort != 0 {
		t.Error("expected default sse_port 0")
	}
	_ = tmpDir
}

func TestLoadWithWorkspace_WorkspaceOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, WorkspaceDirName)
	if err := os.MkdirAll(wsDir, 0755); err != nil {
		t.Fatalf("failed to create workspace dir: %v", err)
	}
	wsConfig := `
engine:
  provenance: addmultprob
  iteration_limit: 25
`
	if err := os.WriteFile(filepath.Join(wsDir, WorkspaceConfigFile), []byte(wsConfig), 0644); err != nil {
		t.Fatalf("failed to write workspace config: %v", err)
	}

	cfg, resultDir, err := LoadWithWorkspace("", WorkspaceOptions{ExplicitDir: tmpDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resultDir != tmpDir {
		t.Errorf("expected workspace dir %q, got %q", tmpDir, resultDir)
	}
	if cfg.Engine.Provenance != "addmultprob" {
		t.Errorf("expected provenance addmultprob from workspace config, got %q", cfg.Engine.Provenance)
	}
	if cfg.Engine.IterationLimit != 25 {
		t.Errorf("expected iteration_limit 25, got %d", cfg.Engine.IterationLimit)
	}
	// Defaults for unset fields should remain
	if cfg.Server.Name != "datalogengine-mcp" {
		t.Errorf("expected default server name, got %q", cfg.Server.Name)
	}
}

func TestLoadWithWorkspace_ExplicitOverridesWorkspace(t *testing.T) {
	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, WorkspaceDirName)
	if err := os.MkdirAll(wsDir, 0755); err != nil {
		t.Fatalf("failed to create workspace dir: %v", err)
	}
	wsConfig := `
engine:
  provenance: bool
`
	if err := os.WriteFile(filepath.Join(wsDir, WorkspaceConfigFile), []byte(wsConfig), 0644); err != nil {
		t.Fatalf("failed to write workspace config: %v", err)
	}

	explicitPath := filepath.Join(tmpDir, "explicit.yaml")
	explicitConfig := `
engine:
  provenance: unit
`
	if err := os.WriteFile(explicitPath, []byte(explicitConfig), 0644); err != nil {
		t.Fatalf("failed to write explicit config: %v", err)
	}

	cfg, _, err := LoadWithWorkspace(explicitPath, WorkspaceOptions{ExplicitDir: tmpDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.Provenance != "unit" {
		t.Errorf("expected explicit config to override workspace, got %q", cfg.Engine.Provenance)
	}
}

func TestLoadWithWorkspace_PartialYAML(t *testing.T) {
	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, WorkspaceDirName)
	if err := os.MkdirAll(wsDir, 0755); err != nil {
		t.Fatalf("failed to create workspace dir: %v", err)
	}
	wsConfig := `
engine:
  iteration_limit: 7
`
	if err := os.WriteFile(filepath.Join(wsDir, WorkspaceConfigFile), []byte(wsConfig), 0644); err != nil {
		t.Fatalf("failed to write workspace config: %v", err)
	}

	cfg, _, err := LoadWithWorkspace("", WorkspaceOptions{ExplicitDir: tmpDir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.IterationLimit != 7 {
		t.Errorf("expected iteration_limit 7, got %d", cfg.Engine.IterationLimit)
	}
	// Unchanged defaults
	if cfg.Engine.Provenance != "minmaxprob" {
		t.Errorf("expected default provenance, got %q", cfg.Engine.Provenance)
	}
	if cfg.Server.Name != "datalogengine-mcp" {
		t.Errorf("expected default server name, got %q", cfg.Server.Name)
	}
}

func TestLoadWithWorkspace_Disabled(t *testing.T) {
	tmpDir := t.TempDir()
	wsDir := filepath.Join(tmpDir, WorkspaceDirName)
	if err := os.MkdirAll(wsDir, 0755); err != nil {
		t.Fatalf("failed to create workspace dir: %v", err)
	}
	wsConfig := `
engine:
  provenance: bool
`
	if err := os.WriteFile(filepath.Join(wsDir, WorkspaceConfigFile), []byte(wsConfig), 0644); err != nil {
		t.Fatalf("failed to write workspace config: %v", err)
	}

	cfg, resultDir, err := LoadWithWorkspace("", WorkspaceOptions{Disable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resultDir != "" {
		t.Errorf("expected empty workspace dir with Disable, got %q", resultDir)
	}
	if cfg.Engine.Provenance != "minmaxprob" {
		t.Error("expected default provenance when workspace disabled")
	}
}

func TestResolveWorkspacePaths_Relative(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Config{
		Server: ServerConfig{LogFile: "datalogengine-mcp.log"},
		Engine: EngineConfig{ProgramPath: filepath.Join("programs", "main")},
	}

	resolved := resolveWorkspacePaths(cfg, tmpDir)

	expected := filepath.Join(tmpDir, "datalogengine-mcp.log")
	if resolved.Server.LogFile != expected {
		t.Errorf("expected log file %q, got %q", expected, resolved.Server.LogFile)
	}
	expected = filepath.Join(tmpDir, "programs", "main")
	if resolved.Engine.ProgramPath != expected {
		t.Errorf("expected program path %q, got %q", expected, resolved.Engine.ProgramPath)
	}
}

func TestResolveWorkspacePaths_AbsoluteUntouched(t *testing.T) {
	wsDir := t.TempDir()

	var absLog, absProgram string
	if runtime.GOOS == "windows" {
		absLog = `C:\var\log\datalogengine.log`
		absProgram = `C:\etc\datalogengine\main`
	} else {
		absLog = "/var/log/datalogengine.log"
		absProgram = "/etc/datalogengine/main"
	}

	cfg := Config{
		Server: ServerConfig{LogFile: absLog},
		Engine: EngineConfig{ProgramPath: absProgram},
	}

	resolved := resolveWorkspacePaths(cfg, wsDir)

	if resolved.Server.LogFile != absLog {
		t.Errorf("expected absolute log file untouched %q, got %q", absLog, resolved.Server.LogFile)
	}
	if resolved.Engine.ProgramPath != absProgram {
		t.Errorf("expected absolute program path untouched %q, got %q", absProgram, resolved.Engine.ProgramPath)
	}
}

func TestInitWorkspace_Creates(t *testing.T) {
	tmpDir := t.TempDir()

	if err := InitWorkspace(tmpDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wsDir := filepath.Join(tmpDir, WorkspaceDirName)
	checkDir := func(path string) {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("expected directory %q to exist: %v", path, err)
			return
		}
		if !info.IsDir() {
			t.Errorf("expected %q to be a directory", path)
		}
	}
	checkDir(wsDir)
	checkDir(filepath.Join(wsDir, "programs"))
	checkDir(filepath.Join(wsDir, "data"))

	configPath := filepath.Join(wsDir, WorkspaceConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config template: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty config template")
	}

	gitignorePath := filepath.Join(wsDir, ".gitignore")
	data, err = os.ReadFile(gitignorePath)
	if err != nil {
		t.Fatalf("failed to read .gitignore: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty .gitignore")
	}
}

func TestInitWorkspace_AlreadyExists(t *testing.T) {
	tmpDir := t.TempDir()

	if err := InitWorkspace(tmpDir); err != nil {
		t.Fatalf("first init failed: %v", err)
	}

	err := InitWorkspace(tmpDir)
	if err == nil {
		t.Error("expected error when workspace already exists")
	}
}
