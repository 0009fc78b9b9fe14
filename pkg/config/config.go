package config

import (
	"errors"
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
	Analysis AnalysisConfig
	Calendar CalendarConfig
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
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalysisConfig carries the tunables of the engagement analysis pipeline.
type AnalysisConfig struct {
	// ScoreScale divides a bucket's average engagement before capping at 100.
	ScoreScale float64
	// ConfidenceSamples is the sample count at which confidence saturates.
	ConfidenceSamples int
	// TopSlotsPerDay bounds recommendations per (platform, day).
	TopSlotsPerDay int
	// MaxRecords caps how much history a single run considers.
	MaxRecords int
	// StaleTaskCeiling is how long a run may sit in_progress before the
	// status endpoint reports it as timed out.
	StaleTaskCeiling time.Duration
	// SweepSchedule is the cron expression for the stale-task sweeper.
	SweepSchedule     string
	WorkerConcurrency int
	SlotsCacheTTL     time.Duration
}

// CalendarConfig governs the scheduling calendar endpoints.
type CalendarConfig struct {
	MaxPageSize int
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
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Analysis = AnalysisConfig{
		ScoreScale:        v.GetFloat64("ANALYSIS_SCORE_SCALE"),
		ConfidenceSamples: v.GetInt("ANALYSIS_CONFIDENCE_SAMPLES"),
		TopSlotsPerDay:    v.GetInt("ANALYSIS_TOP_SLOTS_PER_DAY"),
		MaxRecords:        v.GetInt("ANALYSIS_MAX_RECORDS"),
		StaleTaskCeiling:  parseDuration(v.GetString("ANALYSIS_STALE_CEILING"), 5*time.Minute),
		SweepSchedule:     v.GetString("ANALYSIS_SWEEP_SCHEDULE"),
		WorkerConcurrency: v.GetInt("ANALYSIS_WORKER_CONCURRENCY"),
		SlotsCacheTTL:     parseDuration(v.GetString("SLOTS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Calendar = CalendarConfig{
		MaxPageSize: v.GetInt("CALENDAR_MAX_PAGE_SIZE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pulseplan")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ANALYSIS_SCORE_SCALE", 10.0)
	v.SetDefault("ANALYSIS_CONFIDENCE_SAMPLES", 10)
	v.SetDefault("ANALYSIS_TOP_SLOTS_PER_DAY", 3)
	v.SetDefault("ANALYSIS_MAX_RECORDS", 500)
	v.SetDefault("ANALYSIS_STALE_CEILING", "5m")
	v.SetDefault("ANALYSIS_SWEEP_SCHEDULE", "*/1 * * * *")
	v.SetDefault("ANALYSIS_WORKER_CONCURRENCY", 2)
	v.SetDefault("SLOTS_CACHE_TTL", "10m")

	v.SetDefault("CALENDAR_MAX_PAGE_SIZE", 200)
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
