package config

import (
	"os"
	"time"
)

// FileConfig is the subset of Config that can be expressed in a YAML
// overlay file; interface-valued fields (Model, OnStepFinish, the
// extractor's ChatCaller) must be wired programmatically by the caller.
type FileConfig struct {
	ModelName           string  `yaml:"modelName"`
	VectorURL           string  `yaml:"vectorUrl"`
	VectorToken         string  `yaml:"vectorToken"`
	RedisURL            string  `yaml:"redisUrl"`
	RedisToken          string  `yaml:"redisToken"`
	Threshold           float64 `yaml:"threshold"`
	TTLSeconds          int     `yaml:"ttlSeconds"`
	Debug               bool    `yaml:"debug"`
	CacheMode           string  `yaml:"cacheMode"`
	UseFullMessages     bool    `yaml:"useFullMessages"`
	CollectionName      string  `yaml:"collectionName"`
	EmbeddingDimensions int     `yaml:"embeddingDimensions"`
}

// Load merges user-supplied fields over the built-in defaults, then over
// that applies environment variables for any credential left unset, and
// finally validates the result.
func Load(user Config) (Config, error) {
	cfg := mergeNonZero(Defaults(), user)
	cfg = applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadWithYAML behaves like Load but first overlays a YAML file (see
// FileConfig) between the defaults and the user-supplied fields.
func LoadWithYAML(user Config, yamlPath string) (Config, error) {
	base := Defaults()
	if yamlPath != "" {
		fc, err := readYAMLFile(yamlPath)
		if err != nil {
			return Config{}, err
		}
		base = applyFile(base, fc)
	}
	cfg := mergeNonZero(base, user)
	cfg = applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg Config, fc FileConfig) Config {
	if fc.ModelName != "" {
		cfg.ModelName = fc.ModelName
	}
	if fc.VectorURL != "" {
		cfg.Vector.URL = fc.VectorURL
	}
	if fc.VectorToken != "" {
		cfg.Vector.Token = fc.VectorToken
	}
	if fc.RedisURL != "" {
		cfg.Redis.URL = fc.RedisURL
	}
	if fc.RedisToken != "" {
		cfg.Redis.Token = fc.RedisToken
	}
	if fc.Threshold != 0 {
		cfg.Threshold = fc.Threshold
	}
	if fc.TTLSeconds != 0 {
		cfg.TTL = time.Duration(fc.TTLSeconds) * time.Second
	}
	cfg.Debug = cfg.Debug || fc.Debug
	if fc.CacheMode != "" {
		cfg.CacheMode = CacheMode(fc.CacheMode)
	}
	cfg.UseFullMessages = cfg.UseFullMessages || fc.UseFullMessages
	if fc.CollectionName != "" {
		cfg.CollectionName = fc.CollectionName
	}
	if fc.EmbeddingDimensions != 0 {
		cfg.EmbeddingDimensions = fc.EmbeddingDimensions
	}
	return cfg
}

// mergeNonZero overlays every non-zero-value field of user onto base.
func mergeNonZero(base, user Config) Config {
	if user.Model != nil {
		base.Model = user.Model
	}
	if user.ModelName != "" {
		base.ModelName = user.ModelName
	}
	if user.Vector.URL != "" {
		base.Vector.URL = user.Vector.URL
	}
	if user.Vector.Token != "" {
		base.Vector.Token = user.Vector.Token
	}
	if user.Redis.URL != "" {
		base.Redis.URL = user.Redis.URL
	}
	if user.Redis.Token != "" {
		base.Redis.Token = user.Redis.Token
	}
	if user.Threshold != 0 {
		base.Threshold = user.Threshold
	}
	if user.TTL != 0 {
		base.TTL = user.TTL
	}
	base.Debug = base.Debug || user.Debug
	if user.CacheMode != "" {
		base.CacheMode = user.CacheMode
	}
	if user.SimulateStream != (SimulateStreamConfig{}) {
		base.SimulateStream = user.SimulateStream
	}
	base.UseFullMessages = base.UseFullMessages || user.UseFullMessages
	if user.IntentExtractor.Model != nil {
		base.IntentExtractor.Model = user.IntentExtractor.Model
	}
	if user.IntentExtractor.WindowSize != 0 {
		base.IntentExtractor.WindowSize = user.IntentExtractor.WindowSize
	}
	if user.IntentExtractor.Prompt != "" {
		base.IntentExtractor.Prompt = user.IntentExtractor.Prompt
	}
	if user.OnStepFinish != nil {
		base.OnStepFinish = user.OnStepFinish
	}
	base.FailOpenOnLookupError = base.FailOpenOnLookupError || user.FailOpenOnLookupError
	if user.CollectionName != "" {
		base.CollectionName = user.CollectionName
	}
	if user.EmbeddingDimensions != 0 {
		base.EmbeddingDimensions = user.EmbeddingDimensions
	}
	return base
}

func applyEnv(cfg Config) Config {
	if cfg.Vector.URL == "" {
		cfg.Vector.URL = os.Getenv("VECTOR_REST_URL")
	}
	if cfg.Vector.Token == "" {
		cfg.Vector.Token = os.Getenv("VECTOR_REST_TOKEN")
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = os.Getenv("REDIS_REST_URL")
	}
	if cfg.Redis.Token == "" {
		cfg.Redis.Token = os.Getenv("REDIS_REST_TOKEN")
	}
	return cfg
}

