package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes the outgoing views as indented JSON to path.
func WriteFile(path string, elements []*Elements) error {
	if elements == nil {
		elements = []*Elements{}
	}
	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outgoing variants: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write outgoing variants: %w", err)
	}
	return nil
}
