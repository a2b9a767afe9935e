// Package config loads and validates per-project configuration, stored as
// YAML (matching the teacher's sole on-disk config format, config.yaml,
// via gopkg.in/yaml.v3), and a debounced writer that coalesces bursts of
// config updates. Struct shape grounded on internal/config/config.go's
// nested yaml-tagged config structs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/kobold/internal/agenttype"
	"github.com/harrison/kobold/internal/filelock"
	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/models"
)

// ProjectInfo identifies the project a configuration belongs to.
type ProjectInfo struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// AgentConfig is one role's admission and provider settings.
type AgentConfig struct {
	MaxParallel int    `yaml:"maxParallel"`
	Timeout     int    `yaml:"timeout"`
	Enabled     bool   `yaml:"enabled"`
	Provider    string `yaml:"provider,omitempty"`
	Model       string `yaml:"model,omitempty"`
}

// SecurityConfig constrains tool filesystem access.
type SecurityConfig struct {
	SandboxMode          models.SandboxMode `yaml:"sandboxMode"`
	AllowedExternalPaths []string           `yaml:"allowedExternalPaths,omitempty"`
}

// Metadata tracks config provenance.
type Metadata struct {
	CreatedAt   time.Time `yaml:"createdAt"`
	LastUpdated time.Time `yaml:"lastUpdated"`
}

// ProjectConfig is the recognized option set from spec §6's "Project
// configuration JSON" (persisted as YAML here, per the teacher's format).
type ProjectConfig struct {
	Project  ProjectInfo            `yaml:"project"`
	Agents   map[string]AgentConfig `yaml:"agents"`
	Security SecurityConfig         `yaml:"security"`
	Metadata Metadata               `yaml:"metadata"`
}

// Default returns a ProjectConfig with every agent role enabled at a
// sensible default parallelism and workspace sandboxing.
func Default(projectID, projectName string) ProjectConfig {
	now := time.Now()
	agents := make(map[string]AgentConfig)
	for _, t := range agenttype.New().List() {
		agents[string(t)] = AgentConfig{MaxParallel: 2, Timeout: 0, Enabled: true}
	}
	return ProjectConfig{
		Project:  ProjectInfo{ID: projectID, Name: projectName},
		Agents:   agents,
		Security: SecurityConfig{SandboxMode: models.SandboxWorkspace},
		Metadata: Metadata{CreatedAt: now, LastUpdated: now},
	}
}

// Validate checks invariants that Load cannot trust a hand-edited file to
// uphold: known sandbox mode, known agent-type keys.
func (c ProjectConfig) Validate() error {
	switch c.Security.SandboxMode {
	case models.SandboxWorkspace, models.SandboxRelaxed, models.SandboxStrict, "":
	default:
		return kerrors.NewConfigError("invalid_sandbox_mode", fmt.Sprintf("invalid sandboxMode %q", c.Security.SandboxMode))
	}

	validator := agenttype.New()
	for name := range c.Agents {
		if !validator.Exists(name) {
			return kerrors.NewConfigError("unknown_agent_type", fmt.Sprintf("unknown agent type %q", name))
		}
	}
	return nil
}

// Load reads and validates a ProjectConfig from path.
func Load(path string) (ProjectConfig, error) {
	var cfg ProjectConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, kerrors.NewPersistenceError("config_load", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, kerrors.NewConfigError("invalid_yaml", "invalid config yaml: "+err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save validates then atomically writes cfg to path under a file lock.
func Save(path string, cfg ProjectConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return kerrors.NewPersistenceError("config_marshal", path, err)
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return kerrors.NewPersistenceError("config_save", path, err)
	}
	return nil
}
