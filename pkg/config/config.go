/*
Package config manages TOML config for freqdict runs.

The file lives at [UserConfigDir]/freqdict/config.toml unless --config points
elsewhere. A missing file is created with defaults; a file with syntax errors
is salvaged key by key. Source settings can be overridden from the environment
(FREQDICT_*), with a .env file in the working directory loaded first.
*/
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/bastiangx/freqdict/internal/utils"
)

const (
	appName        = "freqdict"
	configFileName = "config.toml"
)

// Config holds the entire config structure
type Config struct {
	Build  BuildConfig  `toml:"build"`
	Source SourceConfig `toml:"source"`
	Clean  CleanConfig  `toml:"clean"`
}

// BuildConfig has corpus build options.
type BuildConfig struct {
	Titles              []string `toml:"titles"`
	MaxPages            int      `toml:"max_pages"`
	Output              string   `toml:"output"`
	Workers             int      `toml:"workers"`
	FetchTimeoutSeconds int      `toml:"fetch_timeout_seconds"`
	StopwordsFile       string   `toml:"stopwords_file"`
}

// SourceConfig selects where article text comes from.
type SourceConfig struct {
	Kind      string `toml:"kind"` // "wikipedia" or "dir"
	Language  string `toml:"language"`
	Endpoint  string `toml:"endpoint"`
	UserAgent string `toml:"user_agent"`
	Dir       string `toml:"dir"`
}

// CleanConfig holds dictionary maintenance options.
type CleanConfig struct {
	Input      string  `toml:"input"`
	Output     string  `toml:"output"`
	Percentile float64 `toml:"percentile"`
	ChunkSize  int     `toml:"chunk_size"`
}

// FetchTimeout returns the per-page timeout. Zero disables it.
func (b BuildConfig) FetchTimeout() time.Duration {
	if b.FetchTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.FetchTimeoutSeconds) * time.Second
}

// PageTitles returns the titles to fetch, capped at MaxPages when set.
func (b BuildConfig) PageTitles() []string {
	if b.MaxPages > 0 && b.MaxPages < len(b.Titles) {
		return b.Titles[:b.MaxPages]
	}
	return b.Titles
}

// CleanOutput is where the cleaned dictionary goes. Empty means in place.
func (c CleanConfig) CleanOutput() string {
	if c.Output == "" {
		return c.Input
	}
	return c.Output
}

// DefaultTitles are the articles fetched when none are given.
var DefaultTitles = []string{
	"Machine learning", "Artificial intelligence", "Computer science",
	"Data science", "Programming language", "Quantum computing",
	"Cryptography", "Cybersecurity", "Mathematics", "Statistics",
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Titles:              append([]string(nil), DefaultTitles...),
			MaxPages:            50,
			Output:              "wikipedia_word_freq.json",
			Workers:             1,
			FetchTimeoutSeconds: 30,
		},
		Source: SourceConfig{
			Kind:      "wikipedia",
			Language:  "en",
			UserAgent: "FreqDictBot/1.0 (https://github.com/bastiangx/freqdict)",
		},
		Clean: CleanConfig{
			Input:      "ngram_freq_dict_top_80.csv",
			Percentile: 0.20,
			ChunkSize:  10000,
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/freqdict (or $XDG_CONFIG_HOME/freqdict)
// 2. os.UserConfigDir()/freqdict
// 3. Current executable dir
func GetConfigDir() (string, error) {
	var candidates []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, appName))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".config", appName))
	} else {
		log.Debugf("Failed to get home directory: %v", err)
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(userDir, appName))
	}

	for _, dir := range candidates {
		if result := utils.CheckDirStatus(dir); result.Writable {
			return dir, nil
		}
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/freqdict/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied to whichever config wins.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadFile(customConfigPath)
	ApplyEnv(config)
	return config, path, nil
}

func loadFile(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages the well-typed keys of a file that failed to decode
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "build"); ok {
		extractBuildConfig(section, &config.Build)
	}
	if section, ok := utils.ExtractSection(tempConfig, "source"); ok {
		extractSourceConfig(section, &config.Source)
	}
	if section, ok := utils.ExtractSection(tempConfig, "clean"); ok {
		extractCleanConfig(section, &config.Clean)
	}
	return config, nil
}

func extractBuildConfig(data map[string]any, build *BuildConfig) {
	if val, ok := utils.ExtractStrings(data, "titles"); ok {
		build.Titles = val
	}
	if val, ok := utils.ExtractInt64(data, "max_pages"); ok {
		build.MaxPages = val
	}
	if val, ok := utils.ExtractString(data, "output"); ok {
		build.Output = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		build.Workers = val
	}
	if val, ok := utils.ExtractInt64(data, "fetch_timeout_seconds"); ok {
		build.FetchTimeoutSeconds = val
	}
	if val, ok := utils.ExtractString(data, "stopwords_file"); ok {
		build.StopwordsFile = val
	}
}

func extractSourceConfig(data map[string]any, src *SourceConfig) {
	if val, ok := utils.ExtractString(data, "kind"); ok {
		src.Kind = val
	}
	if val, ok := utils.ExtractString(data, "language"); ok {
		src.Language = val
	}
	if val, ok := utils.ExtractString(data, "endpoint"); ok {
		src.Endpoint = val
	}
	if val, ok := utils.ExtractString(data, "user_agent"); ok {
		src.UserAgent = val
	}
	if val, ok := utils.ExtractString(data, "dir"); ok {
		src.Dir = val
	}
}

func extractCleanConfig(data map[string]any, c *CleanConfig) {
	if val, ok := utils.ExtractString(data, "input"); ok {
		c.Input = val
	}
	if val, ok := utils.ExtractString(data, "output"); ok {
		c.Output = val
	}
	if val, ok := utils.ExtractFloat(data, "percentile"); ok {
		c.Percentile = val
	}
	if val, ok := utils.ExtractInt64(data, "chunk_size"); ok {
		c.ChunkSize = val
	}
}

// ApplyEnv overrides config values from FREQDICT_* variables. A .env file in
// the working directory is loaded first; variables already set win over it.
func ApplyEnv(c *Config) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to load .env: %v", err)
	}

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("FREQDICT_SOURCE", &c.Source.Kind)
	setString("FREQDICT_LANGUAGE", &c.Source.Language)
	setString("FREQDICT_ENDPOINT", &c.Source.Endpoint)
	setString("FREQDICT_USER_AGENT", &c.Source.UserAgent)
	setString("FREQDICT_SOURCE_DIR", &c.Source.Dir)

	if v, ok := os.LookupEnv("FREQDICT_WORKERS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Build.Workers = n
		} else {
			log.Warnf("Ignoring FREQDICT_WORKERS=%q: %v", v, err)
		}
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
