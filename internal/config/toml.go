// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Pointer fields stay nil
// when a key is absent so flag defaults are kept.
type FileConfig struct {
	Train  TrainConfig  `toml:"train"`
	Detect DetectConfig `toml:"detect"`
	Serve  ServeConfig  `toml:"serve"`
	Log    LogConfig    `toml:"log"`
}

// TrainConfig maps training settings.
type TrainConfig struct {
	K              *int     `toml:"k"`
	MinN           *int     `toml:"min-n"`
	MaxN           *int     `toml:"max-n"`
	ProbExponent   *float64 `toml:"prob-exponent"`
	LengthExponent *float64 `toml:"length-exponent"`
	PenaltyMode    *string  `toml:"penalty-mode"`
	PenaltyFactor  *float64 `toml:"penalty-factor"`
	NFC            *bool    `toml:"nfc"`
}

// DetectConfig maps detection settings.
type DetectConfig struct {
	ModelsDir         *string  `toml:"models-dir"`
	Threshold         *float64 `toml:"threshold"`
	MixedMaxDiff      *float64 `toml:"mixed-max-diff"`
	MixedMinShare     *float64 `toml:"mixed-min-share"`
	SecondaryMaxDiff  *float64 `toml:"secondary-max-diff"`
	SecondaryMinShare *float64 `toml:"secondary-min-share"`
	SubtypeMargin     *float64 `toml:"subtype-margin"`
}

// ServeConfig maps HTTP server settings.
type ServeConfig struct {
	Addr      *string `toml:"addr"`
	CORS      *bool   `toml:"cors"`
	CacheSize *int    `toml:"cache-size"`
	RedisAddr *string `toml:"redis-addr"`
	RedisDB   *int    `toml:"redis-db"`
	RedisTTL  *string `toml:"redis-ttl"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// DefaultTemplate is written by the config command when no file exists.
const DefaultTemplate = `# codeswitch configuration

[train]
# k = 500
# min-n = 3
# max-n = 6
# prob-exponent = 0.27
# length-exponent = 0.09
# penalty-mode = "discriminative"  # zero, proportional, ratio, unique_boost, discriminative
# penalty-factor = 0.1
# nfc = false

[detect]
# models-dir = "~/.local/share/codeswitch/models"
# threshold = 40.0
# mixed-max-diff = 15.0
# mixed-min-share = 35.0
# secondary-max-diff = 25.0
# secondary-min-share = 30.0
# subtype-margin = 3.0

[serve]
# addr = ":8000"
# cors = true
# cache-size = 1024
# redis-addr = "localhost:6379"  # shared result cache; password from REDIS_PASSWORD
# redis-db = 0
# redis-ttl = "1h"

[log]
# level = "info"  # debug, info, warn, error
# format = "text" # text, json
`
