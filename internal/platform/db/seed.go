package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"acr/internal/platform/logger"
	"acr/internal/platform/querier"
)

// SeedFile is the YAML document loaded at startup to register criteria defaults.
type SeedFile struct {
	Criteria []SeedCriterion `yaml:"criteria"`
}

type SeedCriterion struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"displayName"`
	Description string `yaml:"description"`
	Default     bool   `yaml:"default"`
}

func LoadSeedFile(path string) (SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, err
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (SeedFile, error) {
	var file SeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed: %w", err)
	}
	seen := map[string]bool{}
	for i, c := range file.Criteria {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return SeedFile{}, fmt.Errorf("seed criterion %d: name is required", i)
		}
		if seen[name] {
			return SeedFile{}, fmt.Errorf("seed criterion %q declared twice", name)
		}
		seen[name] = true
		file.Criteria[i].Name = name
		if file.Criteria[i].DisplayName == "" {
			file.Criteria[i].DisplayName = name
		}
	}
	return file, nil
}

// Seed registers criteria without touching defaults an operator already changed.
func Seed(ctx context.Context, db querier.Querier, path string, log *logger.Logger) error {
	log = logger.OrNop(log)
	file, err := LoadSeedFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("seed file missing, skipping", "path", path)
			return nil
		}
		return err
	}
	for _, c := range file.Criteria {
		if _, err := db.Exec(ctx, `
			INSERT INTO criteria (name, display_name, description, default_value)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, c.Name, c.DisplayName, c.Description, c.Default); err != nil {
			return fmt.Errorf("seed criterion %s: %w", c.Name, err)
		}
	}
	log.Info("seed applied", "criteria", len(file.Criteria))
	return nil
}
