package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/filename-repairer/fnr"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Repair  RepairConfig  `mapstructure:"repair"`
	Walk    WalkConfig    `mapstructure:"walk"`
	Log     LogConfig     `mapstructure:"log"`
	Journal JournalConfig `mapstructure:"journal"`
	Suggest SuggestConfig `mapstructure:"suggest"`
}

// RepairConfig stores the defaults of a bulk repair.
type RepairConfig struct {
	// Encoding is the code page id used for bulk repair. Empty means the
	// default of the current locale.
	Encoding              string `mapstructure:"encoding"`
	Locale                string `mapstructure:"locale"`
	IncludeSubdirectories bool   `mapstructure:"includeSubdirectories"`
	Conflict              string `mapstructure:"conflict"`
}

// WalkConfig stores traversal tuning.
type WalkConfig struct {
	StepsPerAdvance int      `mapstructure:"stepsPerAdvance"`
	SortEntries     bool     `mapstructure:"sortEntries"`
	Exclude         []string `mapstructure:"exclude"`
}

// LogConfig stores logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// JournalConfig stores the undo journal location.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// SuggestConfig stores settings of batch candidate generation.
type SuggestConfig struct {
	Workers int `mapstructure:"workers"`
}

var AppConfig Config

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

	v.SetDefault("repair.encoding", "")
	v.SetDefault("repair.locale", "")
	v.SetDefault("repair.includeSubdirectories", false)
	v.SetDefault("repair.conflict", "ask")
	v.SetDefault("walk.stepsPerAdvance", internal.DefaultStepsPerAdvance)
	v.SetDefault("walk.sortEntries", true)
	v.SetDefault("walk.exclude", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("journal.path", "")
	v.SetDefault("suggest.workers", internal.DefaultSuggestWorkers)

	v.SetEnvPrefix(internal.DefaultEnvPrefix)
	v.AutomaticEnv()                                   // Read in environment variables that match
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // repair.encoding becomes FNR_REPAIR_ENCODING

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	if c.Walk.StepsPerAdvance <= 0 {
		return fmt.Errorf("walk.stepsPerAdvance must be positive, got %d", c.Walk.StepsPerAdvance)
	}
	if c.Suggest.Workers <= 0 {
		return fmt.Errorf("suggest.workers must be positive, got %d", c.Suggest.Workers)
	}
	switch strings.ToLower(c.Repair.Conflict) {
	case "ask", "overwrite", "skip":
	default:
		return fmt.Errorf("repair.conflict must be one of ask, overwrite, skip; got %q", c.Repair.Conflict)
	}
	return nil
}
