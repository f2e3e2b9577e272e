package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spachava753/toolbridge/internal/config"
)

func main() {
	if err := generateSchema(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}
}

func generateSchema() error {
	schemaJSON, err := config.SchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	gomod := os.Getenv("GOMOD")
	var moduleRoot string
	if gomod != "" {
		moduleRoot = filepath.Dir(gomod)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		moduleRoot = findModuleRoot(wd)
	}

	schemaPath := filepath.Join(moduleRoot, "schema", "toolbridge-config-schema.json")
	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}
	if err := os.WriteFile(schemaPath, schemaJSON, 0644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}

	fmt.Printf("Generated schema: %s\n", schemaPath)
	return nil
}

func findModuleRoot(start string) string {
	for current := start; ; {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return start
		}
		current = parent
	}
}
