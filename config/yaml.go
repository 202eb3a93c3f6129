package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

func readYAMLFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("config: read yaml overlay %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("config: parse yaml overlay %s: %w", path, err)
	}
	return fc, nil
}
