package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	engine "github.com/rxtech-lab/argo-replay/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-replay/internal/strategy"
)

const (
	configDir      = "./config"
	schemaName     = "backtest-engine-v1-config.json"
	sampleName     = "backtest-engine-v1-config.yaml"
	strategiesDir  = "strategies"
	schemaFileMode = 0644
)

func validatePaths(schemaPath, sampleConfigPath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if sampleConfigPath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if filepath.Ext(name) != ".json" {
		return fmt.Errorf("schema name %q must have .json extension", name)
	}

	return nil
}

// getSchemaReference returns the header that points yaml-language-server at the schema.
func getSchemaReference(name string) string {
	return "# yaml-language-server: $schema=" + name + "\n"
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, schemaFileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func generateSchemaFile(config engine.BacktestEngineV1Config, schemaPath string) error {
	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	return writeFile(schemaPath, []byte(schemaJSON))
}

// generateSampleConfig writes the config as yaml with a schema header. An
// existing file is left alone.
func generateSampleConfig(config engine.BacktestEngineV1Config, samplePath string, schemaName string) error {
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", samplePath, err)
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	return writeFile(samplePath, append([]byte(getSchemaReference(schemaName)), yamlBytes...))
}

// generateStrategySchemas writes one schema per registered strategy into dir.
func generateStrategySchemas(dir string) ([]string, error) {
	var paths []string

	for _, name := range strategy.Names() {
		schema, err := strategy.ConfigSchema(name)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s schema: %w", name, err)
		}

		path := filepath.Join(dir, name+".json")
		if err := writeFile(path, []byte(schema)); err != nil {
			return nil, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

func run() error {
	config := engine.EmptyConfig()

	schemaPath := filepath.Join(configDir, schemaName)
	sampleConfigPath := filepath.Join(configDir, sampleName)

	if err := validatePaths(schemaPath, sampleConfigPath); err != nil {
		return err
	}

	if err := validateSchemaName(schemaName); err != nil {
		return err
	}

	if err := generateSchemaFile(config, schemaPath); err != nil {
		return err
	}

	log.Printf("Schema successfully generated at %s", schemaPath)

	if err := generateSampleConfig(config, sampleConfigPath, schemaName); err != nil {
		return err
	}

	paths, err := generateStrategySchemas(filepath.Join(configDir, strategiesDir))
	if err != nil {
		return err
	}

	log.Printf("Generated %d strategy schemas", len(paths))

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
