// Package config loads application settings from an optional file and
// OPTIONSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. OPTIONSIM_LOG_LEVEL.
const EnvPrefix = "OPTIONSIM"

// Config is the top-level application configuration.
type Config struct {
	Difficulty      string         `mapstructure:"difficulty"`
	StartingCapital int64          `mapstructure:"starting_capital"`
	Countdown       int            `mapstructure:"countdown"`
	Duration        int            `mapstructure:"duration"`
	Seed            int64          `mapstructure:"seed"`
	EventLogSize    int            `mapstructure:"event_log_size"`
	Flash           time.Duration  `mapstructure:"flash"`
	Log             logging.Config `mapstructure:"log"`
	HTTP            HTTPConfig     `mapstructure:"http"`
	Bot             BotConfig      `mapstructure:"bot"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BotConfig configures the automated player used by the simulate command.
type BotConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Quantity int64         `mapstructure:"quantity"`
}

func setDefaults(v *viper.Viper) {
	def := game.DefaultConfig()
	v.SetDefault("difficulty", def.Difficulty.String())
	v.SetDefault("starting_capital", def.StartingCapital)
	v.SetDefault("countdown", def.Countdown)
	v.SetDefault("duration", def.Duration)
	v.SetDefault("seed", 0)
	v.SetDefault("event_log_size", def.NewsConfig.LogSize)
	v.SetDefault("flash", def.NewsConfig.FlashDuration)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)

	v.SetDefault("bot.interval", 5*time.Second)
	v.SetDefault("bot.quantity", 1)
}

// Load reads path, or optionsim.yaml from the working directory when path is
// empty, then applies environment overrides. A missing default file is not
// an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("optionsim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := game.ParseDifficulty(c.Difficulty); err != nil {
		return err
	}
	switch {
	case c.StartingCapital <= 0:
		return errors.New("starting_capital must be positive")
	case c.Countdown <= 0:
		return errors.New("countdown must be positive")
	case c.Duration <= 0:
		return errors.New("duration must be positive")
	case c.EventLogSize <= 0:
		return errors.New("event_log_size must be positive")
	case c.Flash <= 0:
		return errors.New("flash must be positive")
	case c.Bot.Quantity <= 0:
		return errors.New("bot.quantity must be positive")
	}
	return nil
}

// GameConfig maps the settings onto a game.Config.
func (c *Config) GameConfig() (game.Config, error) {
	d, err := game.ParseDifficulty(c.Difficulty)
	if err != nil {
		return game.Config{}, err
	}

	gc := game.DefaultConfig()
	gc.Difficulty = d
	gc.StartingCapital = c.StartingCapital
	gc.Countdown = c.Countdown
	gc.Duration = c.Duration
	gc.Seed = c.Seed
	gc.NewsConfig.LogSize = c.EventLogSize
	gc.NewsConfig.FlashDuration = c.Flash
	return gc, nil
}
