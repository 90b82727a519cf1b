package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Semester SemesterConfig
	Cache    CacheConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SemesterConfig bounds the scheduling calendar. The reschedule engine
// rejects dates outside [StartDate, EndDate]; the availability scanner
// enumerates slots inside the daily operating window.
type SemesterConfig struct {
	StartDate          time.Time
	EndDate            time.Time
	DayStart           string
	DayEnd             string
	SlotMinutes        int
	MaxMeetings        int
	DefaultSlotMinutes int
}

// CacheConfig tunes the template-schedule cache. Availability and conflict
// paths never cache; only the recurring weekly view does.
type CacheConfig struct {
	Enabled     bool
	TemplateTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	semStart, err := parseDate(v.GetString("SEMESTER_START_DATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEMESTER_START_DATE: %w", err)
	}
	semEnd, err := parseDate(v.GetString("SEMESTER_END_DATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEMESTER_END_DATE: %w", err)
	}
	if !semStart.Before(semEnd) {
		return nil, fmt.Errorf("semester start %s is not before end %s", semStart.Format("2006-01-02"), semEnd.Format("2006-01-02"))
	}

	cfg.Semester = SemesterConfig{
		StartDate:          semStart,
		EndDate:            semEnd,
		DayStart:           v.GetString("OPERATING_DAY_START"),
		DayEnd:             v.GetString("OPERATING_DAY_END"),
		SlotMinutes:        v.GetInt("SLOT_INCREMENT_MINUTES"),
		MaxMeetings:        v.GetInt("MAX_MEETINGS_PER_COURSE"),
		DefaultSlotMinutes: v.GetInt("DEFAULT_CLASS_DURATION_MINUTES"),
	}

	cfg.Cache = CacheConfig{
		Enabled:     v.GetBool("ENABLE_SCHEDULE_CACHE"),
		TemplateTTL: parseDuration(v.GetString("SCHEDULE_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cssc")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "cssc-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SEMESTER_START_DATE", "2025-08-25")
	v.SetDefault("SEMESTER_END_DATE", "2025-12-05")
	v.SetDefault("OPERATING_DAY_START", "07:00")
	v.SetDefault("OPERATING_DAY_END", "18:00")
	v.SetDefault("SLOT_INCREMENT_MINUTES", 30)
	v.SetDefault("MAX_MEETINGS_PER_COURSE", 16)
	v.SetDefault("DEFAULT_CLASS_DURATION_MINUTES", 150)

	v.SetDefault("ENABLE_SCHEDULE_CACHE", false)
	v.SetDefault("SCHEDULE_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
