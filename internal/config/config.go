package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the websocket gateway settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PongTimeout     time.Duration `mapstructure:"pong_timeout"`
}

// EngineConfig holds the rules-engine tunables.
type EngineConfig struct {
	IterationCeiling    int `mapstructure:"iteration_ceiling"`
	ClassicStartingLife int `mapstructure:"classic_starting_life"`
	BlitzStartingLife   int `mapstructure:"blitz_starting_life"`
	BlitzCrystalCap     int `mapstructure:"blitz_crystal_cap"`
	StartingHandSize    int `mapstructure:"starting_hand_size"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given YAML file, applying defaults for
// anything unset. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.pong_timeout", 60*time.Second)

	v.SetDefault("engine.iteration_ceiling", 1000)
	v.SetDefault("engine.classic_starting_life", 20)
	v.SetDefault("engine.blitz_starting_life", 30)
	v.SetDefault("engine.blitz_crystal_cap", 10)
	v.SetDefault("engine.starting_hand_size", 7)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Engine.IterationCeiling <= 0 {
		return nil, fmt.Errorf("engine.iteration_ceiling must be positive")
	}
	return &cfg, nil
}
