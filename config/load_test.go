package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelmem/semanticmemory/config"
)

func TestLoadAppliesDefaultsThenUserOverrides(t *testing.T) {
	cfg, err := config.Load(config.Config{
		Model:     stubEmbedder{},
		Vector:    config.VectorConfig{URL: "https://vector.example", Token: "vtoken"},
		Redis:     config.RedisConfig{URL: "https://redis.example", Token: "rtoken"},
		Threshold: 0.8,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threshold != 0.8 {
		t.Errorf("Threshold = %v, want the user override 0.8", cfg.Threshold)
	}
	if cfg.TTL != config.Defaults().TTL {
		t.Errorf("TTL = %v, want the untouched default", cfg.TTL)
	}
}

func TestLoadFallsBackToEnvForCredentials(t *testing.T) {
	t.Setenv("VECTOR_REST_URL", "https://env-vector.example")
	t.Setenv("VECTOR_REST_TOKEN", "env-vtoken")
	t.Setenv("REDIS_REST_URL", "https://env-redis.example")
	t.Setenv("REDIS_REST_TOKEN", "env-rtoken")

	cfg, err := config.Load(config.Config{Model: stubEmbedder{}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vector.URL != "https://env-vector.example" || cfg.Vector.Token != "env-vtoken" {
		t.Errorf("Vector = %+v, want env-sourced credentials", cfg.Vector)
	}
	if cfg.Redis.URL != "https://env-redis.example" || cfg.Redis.Token != "env-rtoken" {
		t.Errorf("Redis = %+v, want env-sourced credentials", cfg.Redis)
	}
}

func TestLoadPrefersExplicitFieldsOverEnv(t *testing.T) {
	t.Setenv("VECTOR_REST_URL", "https://env-vector.example")
	t.Setenv("VECTOR_REST_TOKEN", "env-vtoken")

	cfg, err := config.Load(config.Config{
		Model:  stubEmbedder{},
		Vector: config.VectorConfig{URL: "https://explicit.example", Token: "explicit-token"},
		Redis:  config.RedisConfig{URL: "https://redis.example", Token: "rtoken"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Vector.URL != "https://explicit.example" {
		t.Errorf("Vector.URL = %q, want the explicit value to win over env", cfg.Vector.URL)
	}
}

func TestLoadReturnsValidationErrorWhenIncomplete(t *testing.T) {
	if _, err := config.Load(config.Config{}); err == nil {
		t.Fatal("expected a validation error for an empty config")
	}
}

func TestLoadWithYAMLOverlaysFileBetweenDefaultsAndUser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	yamlBody := "vectorUrl: https://yaml-vector.example\nvectorToken: yaml-vtoken\nredisUrl: https://yaml-redis.example\nredisToken: yaml-rtoken\nthreshold: 0.75\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write overlay file: %v", err)
	}

	cfg, err := config.LoadWithYAML(config.Config{Model: stubEmbedder{}}, path)
	if err != nil {
		t.Fatalf("LoadWithYAML: %v", err)
	}
	if cfg.Vector.URL != "https://yaml-vector.example" {
		t.Errorf("Vector.URL = %q, want the YAML overlay value", cfg.Vector.URL)
	}
	if cfg.Threshold != 0.75 {
		t.Errorf("Threshold = %v, want 0.75 from the YAML overlay", cfg.Threshold)
	}
}

func TestLoadWithYAMLUserFieldsWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	yamlBody := "vectorUrl: https://yaml-vector.example\nvectorToken: yaml-vtoken\nredisUrl: https://yaml-redis.example\nredisToken: yaml-rtoken\nthreshold: 0.75\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write overlay file: %v", err)
	}

	cfg, err := config.LoadWithYAML(config.Config{
		Model:     stubEmbedder{},
		Threshold: 0.6,
	}, path)
	if err != nil {
		t.Fatalf("LoadWithYAML: %v", err)
	}
	if cfg.Threshold != 0.6 {
		t.Errorf("Threshold = %v, want the explicit user override 0.6 to win over the file", cfg.Threshold)
	}
}
