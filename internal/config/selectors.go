package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"linkedin-jobs-scraper/internal/scraper"
)

// LoadSelectors reads a selectors override file. Lists left out of the file keep the
// built-in defaults.
func LoadSelectors(filePath string) (*scraper.Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("selectors file not found: %s: %w", filePath, err)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close selectors file: %v\n", closeErr)
		}
	}()

	var selectors scraper.Selectors
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	return selectors.WithDefaults(), nil
}

// SelectorTables compiles the configured selectors, or the built-in ones when no
// file is set. A relative path is resolved against the configs directory.
func (c *Config) SelectorTables() (*scraper.Tables, error) {
	selectors := scraper.DefaultSelectors()

	if c.SelectorsFile != "" {
		filePath := c.SelectorsFile
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join("configs", filePath)
		}
		loaded, err := LoadSelectors(filePath)
		if err != nil {
			return nil, err
		}
		selectors = loaded
	}

	tables, err := scraper.Compile(selectors)
	if err != nil {
		return nil, fmt.Errorf("invalid selectors: %w", err)
	}
	return tables, nil
}
