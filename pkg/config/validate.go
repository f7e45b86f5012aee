package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks value ranges. Load calls it.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("language must be set")
	}
	if l := c.Dictionary.DifficultyLimit; l < 1 || l > 5 {
		return fmt.Errorf("dictionary.difficulty_limit must be within 1-5 (got %d)", l)
	}
	if t := c.Entity.Threshold; t <= 0 || t > 100 {
		return fmt.Errorf("entity.threshold must be within (0, 100] (got %v)", t)
	}
	if c.Entity.MinimalCount < 1 {
		return fmt.Errorf("entity.minimal_count must be >= 1 (got %d)", c.Entity.MinimalCount)
	}
	if err := c.Knowledge.validate(); err != nil {
		return fmt.Errorf("knowledge: %w", err)
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be >= 1 (got %d)", c.Pipeline.Workers)
	}
	if c.Pipeline.ProgressBuffer < 0 {
		return fmt.Errorf("pipeline.progress_buffer must be >= 0 (got %d)", c.Pipeline.ProgressBuffer)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}

func (k *KnowledgeConfig) validate() error {
	if k.Fandom != "" {
		u, err := url.Parse(k.Fandom)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("fandom must be an absolute URL (got %q)", k.Fandom)
		}
		k.Fandom = strings.TrimSuffix(k.Fandom, "/")
	}
	if k.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must be >= 0 (got %v)", k.RequestsPerSecond)
	}
	if k.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1 (got %d)", k.Concurrency)
	}
	return nil
}
