package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileName is the configuration file looked up in the working and home directories.
const FileName = ".depminer.json"

// Config is the root configuration structure.
type Config struct {
	Repository RepositoryConfig `json:"repository"`
	Manifest   ManifestConfig   `json:"manifest"`
	Filters    FilterConfig     `json:"filters"`
	Output     OutputConfig     `json:"output"`
	Logging    LoggingConfig    `json:"logging"`
}

// RepositoryConfig controls where and how history is read.
type RepositoryConfig struct {
	// CloneURLTemplate expands {owner} and {repo}. Default: https://github.com/{owner}/{repo}.git
	CloneURLTemplate string `json:"cloneUrlTemplate"`
	Branch           string `json:"branch"`       // Default: HEAD
	Engine           string `json:"engine"`       // go-git or cli
	RenameDetect     string `json:"renameDetect"` // off, simple, aggressive
}

// ManifestConfig selects the mined manifest and its parser.
type ManifestConfig struct {
	Path   string `json:"path"`   // Repository-relative, matched exactly. Default: pom.xml
	Parser string `json:"parser"` // tolerant or strict
}

// FilterConfig holds the file-type filter applied before contents are read.
type FilterConfig struct {
	Include []string `json:"include"`
}

// OutputConfig controls the report file.
type OutputConfig struct {
	Format string `json:"format"` // csv, json, ci, markdown
	Dir    string `json:"dir"`
}

// LoggingConfig controls diagnostic logging on stderr.
type LoggingConfig struct {
	Level string `json:"level"` // zerolog level name
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{
			CloneURLTemplate: "https://github.com/{owner}/{repo}.git",
			Branch:           "HEAD",
			Engine:           "go-git",
			RenameDetect:     "simple",
		},
		Manifest: ManifestConfig{
			Path:   "pom.xml",
			Parser: "tolerant",
		},
		Filters: FilterConfig{
			Include: []string{"**/*.xml", "*.xml"},
		},
		Output: OutputConfig{
			Format: "csv",
			Dir:    ".",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// CloneURL expands the clone URL template for a repository.
func (c *Config) CloneURL(owner, repo string) string {
	return strings.NewReplacer("{owner}", owner, "{repo}", repo).Replace(c.Repository.CloneURLTemplate)
}

// Validate reports settings that cannot work whatever the command line says.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Repository.CloneURLTemplate) == "" {
		return fmt.Errorf("repository.cloneUrlTemplate must not be empty")
	}
	if !strings.Contains(c.Repository.CloneURLTemplate, "{repo}") {
		return fmt.Errorf("repository.cloneUrlTemplate %q has no {repo} placeholder", c.Repository.CloneURLTemplate)
	}
	if strings.TrimSpace(c.Manifest.Path) == "" {
		return fmt.Errorf("manifest.path must not be empty")
	}
	p := c.ManifestPath()
	if filepath.IsAbs(c.Manifest.Path) || strings.HasPrefix(p, "/") {
		return fmt.Errorf("manifest.path %q must be relative to the repository root", c.Manifest.Path)
	}
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return fmt.Errorf("manifest.path %q does not name a file inside the repository", c.Manifest.Path)
	}
	return nil
}

// ManifestPath returns the manifest path in the slash-separated, cleaned form
// the history walkers report, so "./pom.xml" becomes "pom.xml".
func (c *Config) ManifestPath() string {
	return path.Clean(filepath.ToSlash(strings.TrimSpace(c.Manifest.Path)))
}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{FileName}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, FileName))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, FileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
