package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "MASHBOT"

// Config はプロセス全体の設定です。
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Bot     BotConfig     `mapstructure:"bot"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
	Otel    OtelConfig    `mapstructure:"otel"`
}

type ServerConfig struct {
	URL string `mapstructure:"url"`
}

type BotConfig struct {
	Count        int           `mapstructure:"count"`
	Name         string        `mapstructure:"name"`
	Flag         string        `mapstructure:"flag"`
	AircraftType string        `mapstructure:"aircraftType"`
	Character    string        `mapstructure:"character"`
	TickInterval time.Duration `mapstructure:"tickInterval"`
	JoinStagger  time.Duration `mapstructure:"joinStagger"`
	Patrol       PointConfig   `mapstructure:"patrol"`
}

type PointConfig struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

type SessionConfig struct {
	ProtocolVersion   uint8         `mapstructure:"protocolVersion"`
	ViewportWidth     uint16        `mapstructure:"viewportWidth"`
	ViewportHeight    uint16        `mapstructure:"viewportHeight"`
	KeepaliveInterval time.Duration `mapstructure:"keepaliveInterval"`
	MaxRetries        int           `mapstructure:"maxRetries"`
	RetryDelay        time.Duration `mapstructure:"retryDelay"`
	WriteQueueSize    int           `mapstructure:"writeQueueSize"`
	ChatPerSecond     float64       `mapstructure:"chatPerSecond"`
	ChatBurst         int           `mapstructure:"chatBurst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type OtelConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"serviceName"`
	Interval    time.Duration `mapstructure:"interval"`
	File        string        `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.url", "wss://eu.airmash.online/ffa")

	v.SetDefault("bot.count", 1)
	v.SetDefault("bot.name", "")
	v.SetDefault("bot.flag", "random")
	v.SetDefault("bot.aircraftType", "random")
	v.SetDefault("bot.character", "")
	v.SetDefault("bot.tickInterval", "100ms")
	v.SetDefault("bot.joinStagger", "500ms")
	v.SetDefault("bot.patrol.x", 0)
	v.SetDefault("bot.patrol.y", 0)

	v.SetDefault("session.protocolVersion", 5)
	v.SetDefault("session.viewportWidth", 640)
	v.SetDefault("session.viewportHeight", 480)
	v.SetDefault("session.keepaliveInterval", "50ms")
	v.SetDefault("session.maxRetries", 3)
	v.SetDefault("session.retryDelay", "500ms")
	v.SetDefault("session.writeQueueSize", 256)
	v.SetDefault("session.chatPerSecond", 1.0)
	v.SetDefault("session.chatBurst", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.serviceName", "mashbot")
	v.SetDefault("otel.interval", "30s")
	v.SetDefault("otel.file", "")
}

// Load は既定値・設定ファイル・MASHBOT_ 環境変数の順に設定を重ねて読み込みます。
// path が空なら設定ファイルは読みません。
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は起動できない設定を拒否します。
func (c Config) Validate() error {
	var errs []error
	if c.Server.URL == "" {
		errs = append(errs, errors.New("server.url is required"))
	}
	if c.Bot.Count < 1 {
		errs = append(errs, fmt.Errorf("bot.count must be at least 1, got %d", c.Bot.Count))
	}
	if c.Bot.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("bot.tickInterval must be positive, got %s", c.Bot.TickInterval))
	}
	if c.Session.KeepaliveInterval <= 0 {
		errs = append(errs, fmt.Errorf("session.keepaliveInterval must be positive, got %s", c.Session.KeepaliveInterval))
	}
	if c.Session.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("session.maxRetries must not be negative, got %d", c.Session.MaxRetries))
	}
	return errors.Join(errs...)
}
