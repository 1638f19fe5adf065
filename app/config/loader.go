package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TagsConfig is the operator-defined tag vocabulary file
type TagsConfig struct {
	Tags []string `yaml:"tags"`
}

// Loader handles loading and validation of the tag vocabulary
type Loader struct {
	tagsFile string
}

// NewLoader creates a new configuration loader
func NewLoader(tagsFile string) *Loader {
	return &Loader{tagsFile: tagsFile}
}

// Load reads the tag vocabulary file. A missing file is not an error;
// it simply yields an empty vocabulary.
func (l *Loader) Load() ([]string, error) {
	if _, err := os.Stat(l.tagsFile); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(l.tagsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags file: %w", err)
	}

	var config TagsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]bool, len(config.Tags))
	var tags []string
	for _, tag := range config.Tags {
		if tag == "" {
			return nil, fmt.Errorf("tag descriptions must be non-empty")
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	return tags, nil
}
