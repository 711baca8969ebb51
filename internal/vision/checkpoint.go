package vision

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultImageSize is the square input resolution used when the checkpoint
// does not declare one.
const DefaultImageSize = 224

// Checkpoint is the manifest describing a trained classifier.
type Checkpoint struct {
	Backbone  string   `yaml:"backbone"`
	Classes   []string `yaml:"classes"`
	Weights   string   `yaml:"weights"`
	ImageSize int      `yaml:"image_size"`
}

// ReadCheckpoint parses and validates the manifest at path. A relative
// weights path is resolved against the manifest directory.
func ReadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	var ck Checkpoint
	if err := yaml.Unmarshal(data, &ck); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint: %w", err)
	}
	if ck.ImageSize == 0 {
		ck.ImageSize = DefaultImageSize
	}
	if ck.Weights != "" && !filepath.IsAbs(ck.Weights) {
		ck.Weights = filepath.Join(filepath.Dir(path), ck.Weights)
	}
	if err := ck.validate(); err != nil {
		return nil, err
	}
	return &ck, nil
}

func (ck *Checkpoint) validate() error {
	if ck.Backbone == "" {
		return fmt.Errorf("checkpoint has no backbone")
	}
	if err := validateClasses(ck.Classes); err != nil {
		return err
	}
	if ck.ImageSize < 1 {
		return fmt.Errorf("invalid image_size %d", ck.ImageSize)
	}
	if ck.Weights == "" {
		return fmt.Errorf("checkpoint has no weights")
	}
	if _, err := os.Stat(ck.Weights); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	return nil
}

func validateClasses(classes []string) error {
	if len(classes) == 0 {
		return fmt.Errorf("no classes")
	}
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		if c == "" {
			return fmt.Errorf("empty class name")
		}
		if seen[c] {
			return fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = true
	}
	return nil
}
