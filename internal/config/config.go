package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/coachbook/service-scheduling/internal/platform/database"
)

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// KafkaConfig holds broker and consumer-group settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// AvailabilityConfig holds the nominal working window and slot settings used
// by the availability engine.
type AvailabilityConfig struct {
	DayStartHour       int
	DayEndHour         int
	GranularityMinutes int
	CreateTimeout      time.Duration
}

// ServiceConfig holds all configuration for the scheduling service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	DBConfig     database.PostgresConfig
	JWTConfig    JWTConfig
	KafkaConfig  KafkaConfig
	Availability AvailabilityConfig
}

// Load reads configuration from environment variables with the SCHEDULING
// prefix, applying defaults suitable for local development.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("SCHEDULING")
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8084")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "scheduling")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")

	v.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA_GROUP_PREFIX", "coachbook.")

	v.SetDefault("DAY_START_HOUR", 6)
	v.SetDefault("DAY_END_HOUR", 22)
	v.SetDefault("SLOT_GRANULARITY_MINUTES", 30)
	v.SetDefault("CREATE_TIMEOUT", "5s")

	cfg := &ServiceConfig{
		Port:   ":" + v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			AccessTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     v.GetStringSlice("KAFKA_BROKERS"),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Availability: AvailabilityConfig{
			DayStartHour:       v.GetInt("DAY_START_HOUR"),
			DayEndHour:         v.GetInt("DAY_END_HOUR"),
			GranularityMinutes: v.GetInt("SLOT_GRANULARITY_MINUTES"),
			CreateTimeout:      v.GetDuration("CREATE_TIMEOUT"),
		},
	}

	if cfg.Availability.DayStartHour < 0 || cfg.Availability.DayEndHour > 24 ||
		cfg.Availability.DayStartHour >= cfg.Availability.DayEndHour {
		return nil, fmt.Errorf("invalid availability window: %d-%d",
			cfg.Availability.DayStartHour, cfg.Availability.DayEndHour)
	}
	if cfg.Availability.GranularityMinutes <= 0 {
		return nil, fmt.Errorf("slot granularity must be positive")
	}

	return cfg, nil
}
