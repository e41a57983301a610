package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Inference
	MaxIterations int     `mapstructure:"BP_MAX_ITERATIONS"`
	Tolerance     float64 `mapstructure:"BP_TOLERANCE"`
	Algorithm     string  `mapstructure:"SKILL_ALGORITHM"` // "bp" or "meanfield"

	// Skill model
	Levels int     `mapstructure:"SKILL_LEVELS"`
	Scale  float64 `mapstructure:"SKILL_SCALE"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("BP_MAX_ITERATIONS", 200)
	viper.SetDefault("BP_TOLERANCE", 1e-8)
	viper.SetDefault("SKILL_ALGORITHM", "bp")
	viper.SetDefault("SKILL_LEVELS", 10)
	viper.SetDefault("SKILL_SCALE", 0.3)

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
