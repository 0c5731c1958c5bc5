// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// Config represents the application configuration, loaded by viper from a
// TOML file and overridable by environment variables.
type Config struct {
	Version string

	LogLevel string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath  string `toml:"logPath" mapstructure:"logPath"`
	DataDir  string `toml:"dataDir" mapstructure:"dataDir"`

	DatabasePath    string `toml:"databasePath" mapstructure:"databasePath"`
	TorrentCacheDir string `toml:"torrentCacheDir" mapstructure:"torrentCacheDir"`

	Host string `toml:"host" mapstructure:"host"`
	Port int    `toml:"port" mapstructure:"port"`

	LogMaxSize    int `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups int `toml:"logMaxBackups" mapstructure:"logMaxBackups"`

	// Decision-engine defaults. Per-searchee overrides may still be supplied
	// by callers of the engine; these are the process-wide fallbacks.
	FuzzySizeFactor       float64  `toml:"fuzzySizeFactor" mapstructure:"fuzzySizeFactor"`
	MinSizeRatio          float64  `toml:"minSizeRatio" mapstructure:"minSizeRatio"`
	IncludeSingleEpisodes bool     `toml:"includeSingleEpisodes" mapstructure:"includeSingleEpisodes"`
	StrictMatching        bool     `toml:"strictMatching" mapstructure:"strictMatching"`
	BlockList             []string `toml:"blockList" mapstructure:"blockList"`

	// Job cadences, milliseconds. Zero disables RSS/SEARCH.
	RSSCadenceMs    int64 `toml:"rssCadenceMs" mapstructure:"rssCadenceMs"`
	SearchCadenceMs int64 `toml:"searchCadenceMs" mapstructure:"searchCadenceMs"`

	UseClientTorrents bool   `toml:"useClientTorrents" mapstructure:"useClientTorrents"`
	InjectAction      string `toml:"injectAction" mapstructure:"injectAction"`
}

// DefaultConfig returns the configuration used when no file/flags override it,
// matching the cadences and tolerances named in the component design.
func DefaultConfig() Config {
	return Config{
		LogLevel:              "info",
		DataDir:                "./data",
		DatabasePath:          "./data/xseed.db",
		TorrentCacheDir:       "./data/torrents",
		Host:                  "127.0.0.1",
		Port:                  9117,
		LogMaxSize:            50,
		LogMaxBackups:         3,
		FuzzySizeFactor:       0.02,
		MinSizeRatio:          0.9,
		IncludeSingleEpisodes: false,
		StrictMatching:        false,
		RSSCadenceMs:          10 * 60 * 1000,
		SearchCadenceMs:       0,
		UseClientTorrents:     true,
		InjectAction:          "INJECT",
	}
}
