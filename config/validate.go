package config

import "errors"

// Validate checks the required fields and numeric ranges, aggregating
// every problem instead of stopping at the first.
func Validate(cfg Config) error {
	var causes []error

	if cfg.Model == nil && cfg.ModelName == "" {
		causes = append(causes, errors.New("model: embedding model is required"))
	}
	if cfg.Vector.URL == "" {
		causes = append(causes, errors.New("vector.url: missing (set VECTOR_REST_URL)"))
	}
	if cfg.Vector.Token == "" {
		causes = append(causes, errors.New("vector.token: missing (set VECTOR_REST_TOKEN)"))
	}
	if cfg.Redis.URL == "" {
		causes = append(causes, errors.New("redis.url: missing (set REDIS_REST_URL)"))
	}
	if cfg.Redis.Token == "" {
		causes = append(causes, errors.New("redis.token: missing (set REDIS_REST_TOKEN)"))
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		causes = append(causes, errors.New("threshold: must be in [0,1]"))
	}
	if cfg.TTL <= 0 {
		causes = append(causes, errors.New("ttl: must be positive"))
	}
	if cfg.EmbeddingDimensions <= 0 {
		causes = append(causes, errors.New("embeddingDimensions: must be positive"))
	}

	if len(causes) > 0 {
		return &ValidationError{Causes: causes}
	}
	return nil
}

// ValidateIntent additionally requires the intent extractor's model to be
// configured; called by CreateIntentMemory in addition to Validate.
func ValidateIntent(cfg Config) error {
	if cfg.IntentExtractor.Model == nil {
		return &ValidationError{Causes: []error{errors.New("intentExtractor.model: required for the intent-similarity variant")}}
	}
	return nil
}
