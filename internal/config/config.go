// Package config provides configuration loading and structs for the civicroute service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug bool `yaml:"debug"`
	// ONNXRuntimePath is the onnxruntime shared library shared by the vision
	// backend and the ONNX embedder. Empty uses the library default.
	ONNXRuntimePath string          `yaml:"onnx_runtime_path"`
	Server          ServerConfig    `yaml:"server"`
	Vision          VisionConfig    `yaml:"vision"`
	Embedding       EmbeddingConfig `yaml:"embedding"`
	Retrieval       RetrievalConfig `yaml:"retrieval"`
}

// ServerConfig holds HTTP adapter settings.
type ServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	MaxUploadBytes        int64  `yaml:"max_upload_bytes"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// VisionConfig points at the classifier checkpoint manifest.
type VisionConfig struct {
	CheckpointPath string `yaml:"checkpoint_path"`
}

// EmbeddingConfig selects the query embedding function. It must be the one
// the store was built with.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	VocabPath  string `yaml:"vocab_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
}

// RetrievalConfig holds the evidence store location and retrieval depth.
type RetrievalConfig struct {
	StorePath string `yaml:"store_path"`
	TopK      int    `yaml:"top_k"`
}

// Load reads and parses the config file at path, expands paths, applies
// defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.ONNXRuntimePath = expandPath(cfg.ONNXRuntimePath, configDir)
	cfg.Vision.CheckpointPath = expandPath(cfg.Vision.CheckpointPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
	cfg.Retrieval.StorePath = expandPath(cfg.Retrieval.StorePath, configDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("invalid max_upload_bytes %d", c.Server.MaxUploadBytes)
	}
	if c.Retrieval.TopK < 0 {
		return fmt.Errorf("invalid retrieval top_k %d", c.Retrieval.TopK)
	}
	switch c.Embedding.Provider {
	case "onnx", "hash":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	return nil
}

// Addr returns the listen address for the HTTP adapter.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty stays empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
