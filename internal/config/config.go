package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Instance  InstanceConfig  `mapstructure:"instance"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Census    CensusConfig    `mapstructure:"census"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

type LifecycleConfig struct {
	RecoveryGrace     time.Duration `mapstructure:"recovery_grace"`
	InactivityEnabled bool          `mapstructure:"inactivity_enabled"`
	InactivityTimeout time.Duration `mapstructure:"inactivity_timeout"`
}

type CensusConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.channel", "ventas_ws_events")
	viper.SetDefault("instance.id", "ventas-ws-1")
	viper.SetDefault("lifecycle.recovery_grace", 2*time.Minute)
	viper.SetDefault("lifecycle.inactivity_enabled", false)
	viper.SetDefault("lifecycle.inactivity_timeout", 60*time.Second)
	viper.SetDefault("census.enabled", true)
	viper.SetDefault("census.interval", time.Minute)

	// Configuration file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/ventas-ws/")

	// Environment variable support
	viper.AutomaticEnv()

	// Environment variable mappings
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("redis.channel", "REDIS_CHANNEL")
	viper.BindEnv("instance.id", "INSTANCE_ID")
	viper.BindEnv("lifecycle.recovery_grace", "RECOVERY_GRACE")
	viper.BindEnv("lifecycle.inactivity_enabled", "INACTIVITY_ENABLED")
	viper.BindEnv("lifecycle.inactivity_timeout", "INACTIVITY_TIMEOUT")
	viper.BindEnv("census.enabled", "CENSUS_ENABLED")
	viper.BindEnv("census.interval", "CENSUS_INTERVAL")

	// Read configuration file (optional - will use defaults/env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, continue with defaults and environment variables
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetConfigString returns a formatted string representation of the config
func (c *Config) GetConfigString() string {
	return fmt.Sprintf(
		"Server: %s:%d, Redis: %s (enabled=%t), Instance: %s",
		c.Server.Host,
		c.Server.Port,
		c.Redis.Address,
		c.Redis.Enabled,
		c.Instance.ID,
	)
}
