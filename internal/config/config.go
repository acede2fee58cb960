package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the gamerec service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Cache     CacheConfig     `yaml:"cache"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Recommend RecommendConfig `yaml:"recommend"`
	Build     BuildConfig     `yaml:"build"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig holds the embedding cache store settings.
// An empty addrs list disables the cache.
type CacheConfig struct {
	Driver            string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs             []string `yaml:"addrs"`
	Username          string   `yaml:"username"`
	Password          string   `yaml:"password"`
	DB                int      `yaml:"db"`
	Standalone        bool     `yaml:"standalone"`           // skip cluster discovery
	TTLSec            int      `yaml:"ttl_sec"`              // 0 = no expiry
	ClientCacheTTLSec int      `yaml:"client_cache_ttl_sec"` // 0 = client-side caching off
	ReadinessTimeout  int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache store is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// EmbeddingConfig holds embedding settings.
type EmbeddingConfig struct {
	Providers   map[string]ProviderConfig   `yaml:"providers"`
	Vectorizers map[string]VectorizerConfig `yaml:"vectorizers"`
	Vectorizer  string                      `yaml:"vectorizer"` // active vectorizer name
	TimeoutMs   int                         `yaml:"timeout_ms"`
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// VectorizerConfig holds vectorizer settings.
type VectorizerConfig struct {
	Provider            string `yaml:"provider"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	MaxBatchSize        int    `yaml:"max_batch_size"`
}

// SnapshotConfig holds snapshot store settings.
type SnapshotConfig struct {
	Dir            string `yaml:"dir"`
	ReloadEndpoint bool   `yaml:"reload_endpoint"`
}

// RecommendConfig holds request defaults and limits.
type RecommendConfig struct {
	DefaultAlpha float64 `yaml:"default_alpha"`
	DefaultTopN  int     `yaml:"default_top_n"`
	SemanticTopK int     `yaml:"semantic_top_k"`
	MaxTopN      int     `yaml:"max_top_n"`
}

// BuildConfig holds settings of the snapshot build tool.
type BuildConfig struct {
	ItemsPath   string `yaml:"items_path"`
	ChunkSize   int    `yaml:"chunk_size"`
	Parallelism int    `yaml:"parallelism"`
	MaxWords    int    `yaml:"max_words"`
}

// ActiveVectorizer returns the selected vectorizer and its provider.
func (c *Config) ActiveVectorizer() (string, VectorizerConfig, ProviderConfig, error) {
	name := c.Embedding.Vectorizer
	v, ok := c.Embedding.Vectorizers[name]
	if !ok {
		return "", VectorizerConfig{}, ProviderConfig{}, fmt.Errorf("vectorizer %q is not configured", name)
	}
	p, ok := c.Embedding.Providers[v.Provider]
	if !ok {
		return "", VectorizerConfig{}, ProviderConfig{}, fmt.Errorf(
			"vectorizer %q references unknown provider %q", name, v.Provider)
	}
	return name, v, p, nil
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, expanding env variables, applying defaults and validating.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "valkey"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Embedding.TimeoutMs <= 0 {
		c.Embedding.TimeoutMs = 5000
	}
	if c.Embedding.Vectorizer == "" && len(c.Embedding.Vectorizers) == 1 {
		for name := range c.Embedding.Vectorizers {
			c.Embedding.Vectorizer = name
		}
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = "data/snapshot"
	}
	if c.Recommend.DefaultAlpha == 0 {
		c.Recommend.DefaultAlpha = 0.5
	}
	if c.Recommend.DefaultTopN <= 0 {
		c.Recommend.DefaultTopN = 10
	}
	if c.Recommend.SemanticTopK <= 0 {
		c.Recommend.SemanticTopK = 50
	}
	if c.Recommend.MaxTopN <= 0 {
		c.Recommend.MaxTopN = 100
	}
	if c.Build.ChunkSize <= 0 {
		c.Build.ChunkSize = 64
	}
	if c.Build.Parallelism <= 0 {
		c.Build.Parallelism = 4
	}
	if c.Build.MaxWords <= 0 {
		c.Build.MaxWords = 512
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case "valkey", "redis":
		// ok
	default:
		return fmt.Errorf("cache.driver must be \"valkey\" or \"redis\", got %q", c.Cache.Driver)
	}
	if c.Cache.TTLSec < 0 || c.Cache.ClientCacheTTLSec < 0 {
		return fmt.Errorf("cache ttl values must not be negative")
	}
	if _, _, _, err := c.ActiveVectorizer(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	a := c.Recommend.DefaultAlpha
	if math.IsNaN(a) || a < 0 || a > 1 {
		return fmt.Errorf("recommend.default_alpha must be in [0, 1], got %v", a)
	}
	if c.Recommend.DefaultTopN > c.Recommend.MaxTopN {
		return fmt.Errorf("recommend.default_top_n (%d) exceeds max_top_n (%d)",
			c.Recommend.DefaultTopN, c.Recommend.MaxTopN)
	}
	if c.Recommend.SemanticTopK < c.Recommend.DefaultTopN {
		return fmt.Errorf("recommend.semantic_top_k (%d) must be at least default_top_n (%d)",
			c.Recommend.SemanticTopK, c.Recommend.DefaultTopN)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
