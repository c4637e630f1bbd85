package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, in order.
var DefaultConfigPaths = []string{
	"pantryd.yaml",
	"pantryd.yml",
	"/etc/pantryd/pantryd.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces environment overrides, e.g.
// PANTRY_PROVIDER__KEYS=key1,key2 sets provider.keys.
const envPrefix = "PANTRY_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Cache     CacheConfig     `koanf:"cache"`
	Provider  ProviderConfig  `koanf:"provider"`
	Offline   OfflineConfig   `koanf:"offline"`
	Recommend RecommendConfig `koanf:"recommend"`
}

type ServerConfig struct {
	Port           string        `koanf:"port"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	MaxBodyBytes   int64         `koanf:"max_body_bytes"`
}

type CacheConfig struct {
	Backend   string `koanf:"backend"` // file | memory | redis
	Path      string `koanf:"path"`    // file backend: JSON document path
	RedisAddr string `koanf:"redis_addr"`
	Prefix    string `koanf:"prefix"`
}

type ProviderConfig struct {
	BaseURL         string        `koanf:"base_url"`
	CDNBaseURL      string        `koanf:"cdn_base_url"`
	Keys            []string      `koanf:"keys"`
	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`
	ListTTL         time.Duration `koanf:"list_ttl"`
	OfflineMode     bool          `koanf:"offline_mode"`
}

type OfflineConfig struct {
	DatasetPath string `koanf:"dataset_path"`
	DetailsDir  string `koanf:"details_dir"`
}

type RecommendConfig struct {
	ArtifactsDir string `koanf:"artifacts_dir"`
	CorpusPath   string `koanf:"corpus_path"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			RequestTimeout: 15 * time.Second,
			MaxBodyBytes:   512 * 1024,
		},
		Cache: CacheConfig{
			Backend:   "file",
			Path:      "artifacts/cache/recipes_cache.json",
			RedisAddr: "127.0.0.1:6379",
			Prefix:    "pantryd",
		},
		Provider: ProviderConfig{
			BaseURL:         "https://api.spoonacular.com",
			CDNBaseURL:      "https://img.spoonacular.com/recipes",
			Keys:            nil,
			UpstreamTimeout: 12 * time.Second,
			ListTTL:         72 * time.Hour, // results cached for 3 days to spare API quota
			OfflineMode:     false,
		},
		Offline: OfflineConfig{
			DatasetPath: "artifacts/demo_recipes.json",
			DetailsDir:  "artifacts/demo_recipe_details",
		},
		Recommend: RecommendConfig{
			ArtifactsDir: "artifacts",
			CorpusPath:   "data/recipes.csv",
		},
	}
}

// Load builds the configuration in three layers: struct defaults, then an
// optional YAML file, then PANTRY_-prefixed environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// PANTRY_PROVIDER__BASE_URL -> provider.base_url
	envProvider := env.Provider(envPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are the fields that accept a comma-separated string from
// the environment in place of a YAML list.
var sliceConfigPaths = []string{
	"provider.keys",
}

// processSliceFields converts comma-separated env values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}
