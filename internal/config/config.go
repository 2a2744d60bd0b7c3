// Package config loads typed pipeline configuration via viper, grounded
// on the location-microservice manifest entry's config pattern.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full set of knobs the pipeline needs at startup.
type Config struct {
	PostgresDSN string `mapstructure:"postgres_dsn"`

	QdrantAddr       string `mapstructure:"qdrant_addr"`
	QdrantCollection string `mapstructure:"qdrant_collection"`
	QdrantAPIKey     string `mapstructure:"qdrant_api_key"`

	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`

	GeminiAPIKey         string `mapstructure:"gemini_api_key"`
	GeminiModel          string `mapstructure:"gemini_model"`
	GeminiEmbeddingModel string `mapstructure:"gemini_embedding_model"`

	LLMTokenCap    int           `mapstructure:"llm_token_cap"`
	LLMTimeout     time.Duration `mapstructure:"llm_timeout"`
	StoreTimeout   time.Duration `mapstructure:"store_timeout"`
	DefaultMaxResults int        `mapstructure:"default_max_results"`

	Development bool `mapstructure:"development"`
}

// Load reads configuration from environment variables (prefixed
// ARGO_FLOATCHAT_) and an optional config file at path (empty string skips
// the file), with defaults. An environment variable takes precedence over
// the same key in the file; the file takes precedence over the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARGO_FLOATCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without a default must be bound explicitly for Unmarshal to see
	// their environment variables.
	for _, key := range []string{"postgres_dsn", "qdrant_addr", "qdrant_api_key", "openai_api_key", "gemini_api_key"} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}

	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("gemini_embedding_model", "gemini-embedding-001")
	v.SetDefault("llm_token_cap", 6000)
	v.SetDefault("llm_timeout", 60*time.Second)
	v.SetDefault("store_timeout", 10*time.Second)
	v.SetDefault("default_max_results", 25)
	v.SetDefault("qdrant_collection", "argo_profile_summaries")
	v.SetDefault("development", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
