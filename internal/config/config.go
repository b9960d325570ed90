// Package config provides configuration management for thematic using Viper
// for loading from files, environment variables and command-line flags.
//
// Configuration is read from .thematic.yml, overridden by THEMATIC_
// environment variables (".env" files are loaded into the environment
// first) and finally by flags bound to viper keys.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/conneroisu/thematic/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "THEMATIC"

// DefaultConfigName is the configuration file looked up in the working
// directory when none is given.
const DefaultConfigName = ".thematic"

type Config struct {
	Roots      RootsConfig      `mapstructure:"roots" yaml:"roots" json:"roots"`
	Components ComponentsConfig `mapstructure:"components" yaml:"components" json:"components"`
	Frameworks FrameworksConfig `mapstructure:"frameworks" yaml:"frameworks" json:"frameworks"`
	Vendors    VendorsConfig    `mapstructure:"vendors" yaml:"vendors" json:"vendors"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache" json:"cache"`
	Resolution ResolutionConfig `mapstructure:"resolution" yaml:"resolution" json:"resolution"`
	Content    ContentConfig    `mapstructure:"content" yaml:"content" json:"content"`
	Log        LogConfig        `mapstructure:"log" yaml:"log" json:"log"`
}

// RootsConfig names the two roots component types are looked up under.
type RootsConfig struct {
	Override string `mapstructure:"override" yaml:"override" json:"override"`
	Base     string `mapstructure:"base" yaml:"base" json:"base"`
}

// ComponentsConfig lists the trees scanned for component types during
// aggregation: Roots first, then BaseRoots.
type ComponentsConfig struct {
	Roots     []string `mapstructure:"roots" yaml:"roots" json:"roots"`
	BaseRoots []string `mapstructure:"base_roots" yaml:"base_roots" json:"base_roots"`
}

type FrameworksConfig struct {
	OverrideRoot string `mapstructure:"override_root" yaml:"override_root" json:"override_root"`
	BaseRoot     string `mapstructure:"base_root" yaml:"base_root" json:"base_root"`
}

type VendorsConfig struct {
	EtcRoot  string `mapstructure:"etc_root" yaml:"etc_root" json:"etc_root"`
	LibsRoot string `mapstructure:"libs_root" yaml:"libs_root" json:"libs_root"`
}

type CacheConfig struct {
	Root             string        `mapstructure:"root" yaml:"root" json:"root"`
	MinPurgeInterval time.Duration `mapstructure:"min_purge_interval" yaml:"min_purge_interval" json:"min_purge_interval"`
	BuildAttempts    int           `mapstructure:"build_attempts" yaml:"build_attempts" json:"build_attempts"`
	RetryDelay       time.Duration `mapstructure:"retry_delay" yaml:"retry_delay" json:"retry_delay"`
	MemoryBytes      int64         `mapstructure:"memory_bytes" yaml:"memory_bytes" json:"memory_bytes"`
	MemoryTTL        time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl" json:"memory_ttl"`
}

type ResolutionConfig struct {
	MaxSupertypeDepth int `mapstructure:"max_supertype_depth" yaml:"max_supertype_depth" json:"max_supertype_depth"`
}

// ContentConfig points at the directory loaded into the store.
type ContentConfig struct {
	Dir      string        `mapstructure:"dir" yaml:"dir" json:"dir"`
	Mount    string        `mapstructure:"mount" yaml:"mount" json:"mount"`
	Watch    bool          `mapstructure:"watch" yaml:"watch" json:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Defaults returns every configuration key with its default value.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"roots.override":                 "/apps",
		"roots.base":                     "/libs",
		"components.roots":               []string{"/apps"},
		"components.base_roots":          []string{"/libs/thematic/components"},
		"frameworks.override_root":       "/apps/thematic/ui-frameworks",
		"frameworks.base_root":           "/libs/thematic/ui-frameworks",
		"vendors.etc_root":               "/etc/thematic/vendor-libraries",
		"vendors.libs_root":              "/libs/thematic/vendor-libraries",
		"cache.root":                     "/var/thematic/cache",
		"cache.min_purge_interval":       "1s",
		"cache.build_attempts":           10,
		"cache.retry_delay":              "100ms",
		"cache.memory_bytes":             int64(8 << 20),
		"cache.memory_ttl":               "0s",
		"resolution.max_supertype_depth": 32,
		"content.dir":                    "",
		"content.mount":                  "/",
		"content.watch":                  false,
		"content.debounce":               "200ms",
		"log.level":                      "info",
		"log.format":                     "text",
	}
}

// SetDefaults registers Defaults with the global viper instance.
func SetDefaults() {
	for key, value := range Defaults() {
		viper.SetDefault(key, value)
	}
}

// Init preloads .env files, registers defaults and environment overrides,
// and reads cfgFile, or .thematic.yml from the working directory when
// cfgFile is empty. A missing default file is not an error.
func Init(cfgFile string, envFiles ...string) error {
	if err := loadEnvFiles(envFiles); err != nil {
		return err
	}

	SetDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(DefaultConfigName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// loadEnvFiles loads the given files, or ".env" when none are given.
// Variables already set in the environment win. Missing files are skipped.
func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load unmarshals the global viper state into a Config and validates it.
func Load() (*Config, error) {
	SetDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	// Comma-separated lists from the environment arrive as one string.
	config.Components.Roots = splitList(viper.GetStringSlice("components.roots"))
	config.Components.BaseRoots = splitList(viper.GetStringSlice("components.base_roots"))

	if result := Validate(&config); result.HasErrors() {
		return nil, fmt.Errorf("invalid configuration: %w", result)
	}
	return &config, nil
}

func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ComponentRoots returns every tree scanned for component types, in order.
func (c *Config) ComponentRoots() []string {
	out := make([]string, 0, len(c.Components.Roots)+len(c.Components.BaseRoots))
	out = append(out, c.Components.Roots...)
	return append(out, c.Components.BaseRoots...)
}

// LoggerConfig maps the log section onto a logger configuration.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = level
	}
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	return cfg
}
