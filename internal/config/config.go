// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the engine's TOML configuration file with
// github.com/spf13/viper, writing a default file on first run and letting
// environment variables (XSEED__ followed by the key in SCREAMING_SNAKE_CASE,
// e.g. XSEED__DATABASE_PATH) override anything the file sets.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config is the fully resolved process configuration.
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	DatabasePath string `mapstructure:"databasePath"`
	CacheDir     string `mapstructure:"cacheDir"`

	LogPath       string `mapstructure:"logPath"`
	LogLevel      string `mapstructure:"logLevel"`
	LogMaxSize    int    `mapstructure:"logMaxSize"`
	LogMaxBackups int    `mapstructure:"logMaxBackups"`

	// Decision engine defaults, overridable per-candidate by the caller.
	FuzzySizeFactor       float64 `mapstructure:"fuzzySizeFactor"`
	MinSizeRatio          float64 `mapstructure:"minSizeRatio"`
	StrictMatching        bool    `mapstructure:"strictMatching"`
	IncludeSingleEpisodes bool    `mapstructure:"includeSingleEpisodes"`

	// Scheduler cadences, in minutes; zero disables the job.
	RSSCadenceMinutes    int `mapstructure:"rssCadenceMinutes"`
	SearchCadenceMinutes int `mapstructure:"searchCadenceMinutes"`

	UseClientTorrents bool   `mapstructure:"useClientTorrents"`
	PostSnatchAction  string `mapstructure:"postSnatchAction"` // "INJECT" or "SAVE"

	// IndexerKeyHex is a generated-on-first-run hex-encoded AES-256 key used
	// to encrypt indexer API keys at rest; see models.IndexerStore.
	IndexerKeyHex string `mapstructure:"indexerKeyHex"`

	configPath string
}

const (
	defaultHost             = "localhost"
	defaultPort             = 7475
	defaultLogLevel         = "INFO"
	defaultLogMaxSize       = 50
	defaultLogMaxBackups    = 3
	defaultFuzzySizeFactor  = 0.02
	defaultMinSizeRatio     = 0.9
	defaultPostSnatchAction = "SAVE"
)

// New loads configPath, creating it with defaults if it doesn't exist yet,
// and returns the resolved Config.
func New(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	v.SetDefault("host", defaultHost)
	v.SetDefault("port", defaultPort)
	v.SetDefault("logLevel", defaultLogLevel)
	v.SetDefault("logMaxSize", defaultLogMaxSize)
	v.SetDefault("logMaxBackups", defaultLogMaxBackups)
	v.SetDefault("fuzzySizeFactor", defaultFuzzySizeFactor)
	v.SetDefault("minSizeRatio", defaultMinSizeRatio)
	v.SetDefault("postSnatchAction", defaultPostSnatchAction)

	v.SetEnvPrefix("XSEED")
	v.AutomaticEnv()
	// viper's automatic camelCase->env mapping would look for XSEED_DATABASEPATH;
	// also bind the double-underscore-prefixed, snake-cased form
	// (XSEED__DATABASE_PATH, etc).
	for _, key := range []string{
		"host", "port", "databasePath", "cacheDir", "logPath", "logLevel",
		"logMaxSize", "logMaxBackups", "fuzzySizeFactor", "minSizeRatio",
		"strictMatching", "includeSingleEpisodes", "rssCadenceMinutes",
		"searchCadenceMinutes", "useClientTorrents", "postSnatchAction", "indexerKeyHex",
	} {
		_ = v.BindEnv(key, "XSEED__"+toScreamingSnakeCase(key))
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeDefaultConfig(configPath); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.configPath = configPath

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(filepath.Dir(configPath), "xseed.db")
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(filepath.Dir(configPath), "torrents")
	}

	log.Debug().Str("path", configPath).Msg("configuration loaded")
	return &cfg, nil
}

// GetDatabasePath returns the resolved, absolute-or-relative database path.
func (c *Config) GetDatabasePath() string {
	return c.DatabasePath
}

// GetIndexerEncryptionKey decodes IndexerKeyHex into the 32-byte AES key
// models.NewIndexerStore expects.
func (c *Config) GetIndexerEncryptionKey() ([]byte, error) {
	return hex.DecodeString(c.IndexerKeyHex)
}

const defaultConfigTemplate = `# xseed configuration - auto-generated on first run
host = "localhost"
port = 7475

# Database and torrent-cache locations. Relative paths resolve next to
# this config file.
#databasePath = "xseed.db"
#cacheDir = "torrents"

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/xseed.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: 50
#logMaxSize = 50

# Number of rotated log files to retain (0 keeps all)
# Default: 3
#logMaxBackups = 3

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "INFO"

# Decision engine tuning
fuzzySizeFactor = 0.02
minSizeRatio = 0.9
strictMatching = false
includeSingleEpisodes = false

# Scheduler cadences, in minutes. Zero disables the job.
rssCadenceMinutes = 15
searchCadenceMinutes = 0

useClientTorrents = true
postSnatchAction = "SAVE"

# Generated on first run. Encrypts indexer API keys at rest; do not edit.
indexerKeyHex = "%s"
`

// toScreamingSnakeCase converts a camelCase TOML key ("databasePath") into
// its SCREAMING_SNAKE_CASE environment-variable suffix ("DATABASE_PATH").
func toScreamingSnakeCase(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func writeDefaultConfig(configPath string) error {
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("generating indexer encryption key: %w", err)
	}
	content := fmt.Sprintf(defaultConfigTemplate, hex.EncodeToString(key))
	return os.WriteFile(configPath, []byte(content), 0o644)
}
