package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/noticegen/pkg/logger"
	"github.com/fulmenhq/noticegen/pkg/notice"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// HintFile is the document stored in a hint file
type HintFile struct {
	ProjectHints []notice.ProjectDescription `yaml:"projectHints" toml:"projectHints" json:"projectHints"`
}

// LoadHintFile reads and validates one hint file
func LoadHintFile(path string) ([]notice.ProjectDescription, error) {
	if err := ValidateFile(path, HintsSchema); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 - hint files are listed in the project config
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file HintFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &file)
	case ".toml":
		err = toml.Unmarshal(data, &file)
	default:
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return file.ProjectHints, nil
}

// loadHintFiles appends hints from every configured hint file, in order
func (c *Config) loadHintFiles() error {
	for _, path := range c.HintFiles {
		hints, err := LoadHintFile(path)
		if err != nil {
			return &ConfigError{Source: path, Err: err}
		}
		logger.Debug("Loaded hint file", logger.String("path", path), logger.Int("hints", len(hints)))
		c.ProjectHints = append(c.ProjectHints, hints...)
	}
	return nil
}
