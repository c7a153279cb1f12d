package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/ocrsft/ocrsft"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Encoder   EncoderConfig   `mapstructure:"encoder"`
	Export    ExportConfig    `mapstructure:"export"`
}

// DataConfig points at the clean.json/noisy.json directory and controls the split.
type DataConfig struct {
	Dir      string  `mapstructure:"dir"`
	TestSize float64 `mapstructure:"testSize"`
	Seed     uint64  `mapstructure:"seed"`
}

// TokenizerConfig selects and parameterises the tokenizer backend.
type TokenizerConfig struct {
	Kind     string `mapstructure:"kind"`
	Path     string `mapstructure:"path"`
	Encoding string `mapstructure:"encoding"`
	PadID    int    `mapstructure:"padID"`
	PadToken string `mapstructure:"padToken"`
	BosID    int    `mapstructure:"bosID"`
}

// EncoderConfig stores sample encoder settings.
type EncoderConfig struct {
	MaxLength int `mapstructure:"maxLength"`
	Workers   int `mapstructure:"workers"`
}

// ExportConfig stores the libsql sink location.
type ExportConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("data.dir", internal.DefaultDataDir)
	v.SetDefault("data.testSize", internal.DefaultTestSize)
	v.SetDefault("data.seed", internal.DefaultSeed)
	v.SetDefault("tokenizer.kind", internal.DefaultTokenizer)
	v.SetDefault("tokenizer.path", "")
	v.SetDefault("tokenizer.encoding", internal.DefaultEncoding)
	v.SetDefault("tokenizer.padID", -1)
	v.SetDefault("tokenizer.padToken", "")
	v.SetDefault("tokenizer.bosID", -1)
	v.SetDefault("encoder.maxLength", internal.DefaultMaxLength)
	v.SetDefault("encoder.workers", 0)
	v.SetDefault("export.dsn", "file:"+internal.DefaultExportPath)

	v.SetEnvPrefix(internal.DefaultAppName)
	v.AutomaticEnv()                                   // Read in environment variables that match
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // encoder.maxLength becomes OCRSFT_ENCODER_MAXLENGTH

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the loader and encoder cannot work with.
func (c *Config) Validate() error {
	if c.Data.TestSize < 0 || c.Data.TestSize >= 1 {
		return fmt.Errorf("data.testSize must be in [0, 1): %v", c.Data.TestSize)
	}
	if c.Encoder.MaxLength <= 0 {
		return fmt.Errorf("encoder.maxLength must be positive: %d", c.Encoder.MaxLength)
	}
	if c.Encoder.Workers < 0 {
		return fmt.Errorf("encoder.workers cannot be negative: %d", c.Encoder.Workers)
	}
	return nil
}
