package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// WorkspaceDirName is the directory name for project-level engine config.
	WorkspaceDirName = ".datalogengine"
	// WorkspaceConfigFile is the config file name inside the workspace directory.
	WorkspaceConfigFile = "config.yaml"
	// MaxSearchDepth limits how many parent directories to walk when discovering a workspace.
	MaxSearchDepth = 10
)

// WorkspaceOptions controls workspace discovery behavior.
type WorkspaceOptions struct {
	// Disable skips workspace discovery entirely (--no-workspace flag).
	Disable bool
	// ExplicitDir uses this directory as workspace root instead of walking up (--workspace-dir flag).
	ExplicitDir string
}

// Config captures all tunable settings for the engine and its MCP host.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Engine EngineConfig `yaml:"engine"`
	MCP    MCPConfig    `yaml:"mcp"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	LogFile string `yaml:"log_file"`
}

// EngineConfig controls the embedded Datalog engine.
type EngineConfig struct {
	// ProgramPath is the directory or file holding the front-AST program source
	// to load at startup (optional; the engine also accepts programs built
	// in-process via internal/frontast).
	ProgramPath string `yaml:"program_path"`
	// Provenance selects the semiring used for evaluation:
	// unit | bool | minmaxprob | addmultprob.
	Provenance string `yaml:"provenance"`
	// IterationLimit bounds the number of semi-naive rounds per stratum
	// (0 means unbounded / run to fixpoint).
	IterationLimit int `yaml:"iteration_limit"`
	// FactBufferLimit caps the running count of facts a stratum derives:
	// the round loop halts once it is reached (0 means unbounded). No facts
	// are evicted.
	FactBufferLimit int `yaml:"fact_buffer_limit"`
	// EarlyDiscard is reported by IsEarlyDiscardEnabled; the engine does
	// not consult it when evaluating a program.
	EarlyDiscard *bool `yaml:"early_discard"`
	// RandomSeed seeds the runtime's RNG for reproducible sampling/top-k
	// aggregation when the provenance requires randomness.
	RandomSeed int64 `yaml:"random_seed"`
}

type MCPConfig struct {
	// Enable controls whether the MCP host service starts at all.
	Enable bool `yaml:"enable"`
	// When set, starts an SSE server on this port instead of stdio-only.
	SSEPort int `yaml:"sse_port"`
}

// DefaultConfig provides reasonable defaults for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:    "datalogengine-mcp",
			Version: "0.1.0",
			LogFile: "datalogengine-mcp.log",
		},
		Engine: EngineConfig{
			Provenance:      "minmaxprob",
			IterationLimit:  0,
			FactBufferLimit: 0,
			RandomSeed:      1,
		},
		MCP: MCPConfig{
			Enable:  true,
			SSEPort: 0,
		},
	}
}

// Load reads YAML config from disk and overlays defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, errors.New("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// DiscoverWorkspace walks up from startDir looking for a .datalogengine/config.yaml file.
// Returns the workspace root directory (parent of .datalogengine/) or empty string if not found.
func DiscoverWorkspace(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	for i := 0; i < MaxSearchDepth; i++ {
		candidate := filepath.Join(dir, WorkspaceDirName, WorkspaceConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", nil
}

// LoadWithWorkspace implements multi-layer config merge:
//
//	DefaultConfig() <- .datalogengine/config.yaml <- explicit --config <- CLI flags
//
// Returns the merged config and the workspace directory (empty if none found).
func LoadWithWorkspace(explicitConfig string, opts WorkspaceOptions) (Config, string, error) {
	cfg := DefaultConfig()
	wsDir := ""

	// Layer 1: Workspace config (if not disabled)
	if !opts.Disable {
		var err error
		if opts.ExplicitDir != "" {
			// Verify the explicit workspace dir has a config
			candidate := filepath.Join(opts.ExplicitDir, WorkspaceDirName, WorkspaceConfigFile)
			if _, statErr := os.Stat(candidate); statErr == nil {
				wsDir = opts.ExplicitDir
			}
		} else {
			cwd, cwdErr := os.Getwd()
			if cwdErr != nil {
				return cfg, "", fmt.Errorf("getting working directory: %w", cwdErr)
			}
			wsDir, err = DiscoverWorkspace(cwd)
			if err != nil {
				return cfg, "", fmt.Errorf("discovering workspace: %w", err)
			}
		}

		if wsDir != "" {
			wsConfigPath := filepath.Join(wsDir, WorkspaceDirName, WorkspaceConfigFile)
			raw, err := os.ReadFile(wsConfigPath)
			if err != nil {
				return cfg, "", fmt.Errorf("reading workspace config %s: %w", wsConfigPath, err)
			}
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, "", fmt.Errorf("parsing workspace config %s: %w", wsConfigPath, err)
			}
			cfg = resolveWorkspacePaths(cfg, wsDir)
		}
	}

	// Layer 2: Explicit config file (--config flag)
	if explicitConfig != "" {
		raw, err := os.ReadFile(explicitConfig)
		if err != nil {
			return cfg, wsDir, fmt.Errorf("reading explicit config %s: %w", explicitConfig, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, wsDir, fmt.Errorf("parsing explicit config %s: %w", explicitConfig, err)
		}
	}

	return cfg, wsDir, cfg.Validate()
}

// InitWorkspace creates a .datalogengine/ directory with template files at root.
func InitWorkspace(root string) error {
	wsDir := filepath.Join(root, WorkspaceDirName)

	// Check if already exists
	if _, err := os.Stat(wsDir); err == nil {
		return fmt.Errorf("workspace directory already exists: %s", wsDir)
	}

	// Create directory structure
	dirs := []string{
		wsDir,
		filepath.Join(wsDir, "programs"),
		filepath.Join(wsDir, "data"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write template config
	templateConfig := `# project-level configuration for the Datalog engine host.
# Values here override defaults but are overridden by --config and CLI flags.

# engine:
#   program_path: ".datalogengine/programs/main"
#   provenance: minmaxprob
#   iteration_limit: 0

# mcp:
#   enable: true
#   sse_port: 8765
`
	configPath := filepath.Join(wsDir, WorkspaceConfigFile)
	if err := os.WriteFile(configPath, []byte(templateConfig), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	// Write .gitignore for data directory
	gitignoreContent := "# Runtime data (logs, recovered facts) - do not version control\ndata/\n"
	gitignorePath := filepath.Join(wsDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	return nil
}

// resolveWorkspacePaths resolves relative paths in the config against the workspace directory.
func resolveWorkspacePaths(cfg Config, wsDir string) Config {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(wsDir, p)
	}

	cfg.Server.LogFile = resolve(cfg.Server.LogFile)
	cfg.Engine.ProgramPath = resolve(cfg.Engine.ProgramPath)
	return cfg
}

var validProvenances = map[string]bool{
	"unit":        true,
	"bool":        true,
	"minmaxprob":  true,
	"addmultprob": true,
}

// Validate ensures required fields exist so the server can start deterministically.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if c.Engine.Provenance == "" {
		return errors.New("engine.provenance is required")
	}
	if !validProvenances[c.Engine.Provenance] {
		return fmt.Errorf("engine.provenance %q is not one of unit|bool|minmaxprob|addmultprob", c.Engine.Provenance)
	}
	if c.Engine.IterationLimit < 0 {
		return errors.New("engine.iteration_limit must be >= 0")
	}
	return nil
}

// RoundLimit returns the configured per-stratum round cap, or 0 (unbounded).
func (e EngineConfig) RoundLimit() int {
	if e.IterationLimit < 0 {
		return 0
	}
	return e.IterationLimit
}

// IsEarlyDiscardEnabled returns whether saturated tuples should be dropped
// from further propagation (default: true).
func (e EngineConfig) IsEarlyDiscardEnabled() bool {
	if e.EarlyDiscard == nil {
		return true
	}
	return *e.EarlyDiscard
}

// Seed returns the configured RNG seed, defaulting to 1 for determinism.
func (e EngineConfig) Seed() int64 {
	if e.RandomSeed == 0 {
		return 1
	}
	return e.RandomSeed
}

// StartupTimeout is the deadline the host waits for the engine to finish an
// initial load before serving requests.
func (s ServerConfig) StartupTimeout() time.Duration {
	return 30 * time.Second
}
