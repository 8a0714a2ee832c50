package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config holds settings shared by all commands.
type Config struct {
	Provider      string `mapstructure:"provider"`
	Model         string `mapstructure:"model"`
	APIKeyPath    string `mapstructure:"api_key_path"`
	GeminiBaseURL string `mapstructure:"gemini_base_url"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`
	OllamaURL     string `mapstructure:"ollama_url"`
	PricesFile    string `mapstructure:"prices_file"`
	TemplatesFile string `mapstructure:"templates_file"`
	LogLevel      string `mapstructure:"log_level"`
	Port          string `mapstructure:"port"`
}

// Load reads configuration in priority order: defaults, then the config file
// (explicit path, or captioner.yaml in the working directory or
// $HOME/.config/captioner), then CAPTIONER_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CAPTIONER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider", "gemini")
	v.SetDefault("model", "gemini-1.5-pro")
	v.SetDefault("api_key_path", "")
	v.SetDefault("gemini_base_url", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("ollama_url", "")
	v.SetDefault("prices_file", "")
	v.SetDefault("templates_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", "8888")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("captioner")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/captioner")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Level maps the configured log level to a slog level.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
