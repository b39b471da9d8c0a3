package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort           string        `mapstructure:"SERVER_PORT"`
	RedisAddr            string        `mapstructure:"REDIS_ADDR"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	JWTSecret            string        `mapstructure:"JWT_SECRET"`
	PositionMinDistanceM float64       `mapstructure:"POSITION_MIN_DISTANCE_M"`
	PositionAccuracy     string        `mapstructure:"POSITION_ACCURACY"`
	BarometerAvailable   bool          `mapstructure:"BAROMETER_AVAILABLE"`
	StepCounterAvailable bool          `mapstructure:"STEP_COUNTER_AVAILABLE"`
	StartTimeout         time.Duration `mapstructure:"START_TIMEOUT"`
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("POSITION_MIN_DISTANCE_M", 2.0)
	v.SetDefault("POSITION_ACCURACY", "high")
	v.SetDefault("BAROMETER_AVAILABLE", true)
	v.SetDefault("STEP_COUNTER_AVAILABLE", true)
	v.SetDefault("START_TIMEOUT", 5*time.Second)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}
