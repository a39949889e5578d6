// Package utils holds the json file helpers and path resolution backing
// the configuration layer.
package utils

import (
	"encoding/json"
	"fmt"
	"os"
)

// CreateFile at path, with toCreate marshalled as indented json.
func CreateFile[T any](path string, toCreate *T) error {
	b, err := json.MarshalIndent(toCreate, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal file: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

// ReadAndUnmarshal the json file at filePath into config.
func ReadAndUnmarshal[T any](filePath string, config *T) error {
	fileBytes, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := json.Unmarshal(fileBytes, config); err != nil {
		return fmt.Errorf("failed to unmarshal file '%v': %w", filePath, err)
	}
	return nil
}
