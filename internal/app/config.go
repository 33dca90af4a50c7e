package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/coursehub-backend/internal/data/db"
	"github.com/yungbote/coursehub-backend/internal/platform/envutil"
	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/platform/sendgrid"
)

const (
	defaultReviewWindowDays = 7
	defaultMaxUploadMB      = 50
)

type Config struct {
	Env         string
	Port        string
	ServiceName string
	Version     string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	Postgres db.PostgresConfig

	Storage    gcp.ObjectStorageConfig
	StorageErr error

	RedisAddr string
	SendGrid  sendgrid.Config

	CORSOrigins    []string
	TracingEnabled bool
	OTLPEndpoint   string

	LectureReviewWindow time.Duration
	MaxUploadBytes      int64
}

// IsProduction hides error stacks and switches the logger to JSON.
func (c Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "prod", "production":
		return true
	}
	return false
}

// loadDotEnv reads .env when present. Variables already set in the process win.
func loadDotEnv() error {
	return godotenv.Load()
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := envutil.String("JWT_SECRET_KEY", "")
	if jwtSecretKey == "" {
		log.Warn("JWT_SECRET_KEY not set, using development default")
		jwtSecretKey = "defaultsecret"
	}

	storageCfg, storageErr := gcp.ResolveObjectStorageConfigFromEnv()

	reviewDays := envutil.Int("LECTURE_REVIEW_WINDOW_DAYS", defaultReviewWindowDays)
	if reviewDays <= 0 {
		reviewDays = defaultReviewWindowDays
	}
	maxUploadMB := envutil.Int("MAX_UPLOAD_MB", defaultMaxUploadMB)
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}

	return Config{
		Env:         envutil.String("APP_ENV", "development"),
		Port:        envutil.String("PORT", "8080"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "coursehub-api"),
		Version:     envutil.String("APP_VERSION", "dev"),

		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Seconds("REFRESH_TOKEN_TTL", 24*time.Hour),

		Postgres: db.PostgresConfigFromEnv(),

		Storage:    storageCfg,
		StorageErr: storageErr,

		RedisAddr: envutil.String("REDIS_ADDR", ""),
		SendGrid:  sendgrid.ConfigFromEnv(),

		CORSOrigins:    envutil.List("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
		TracingEnabled: envutil.Bool("OTEL_ENABLED", false),
		OTLPEndpoint:   envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		LectureReviewWindow: time.Duration(reviewDays) * 24 * time.Hour,
		MaxUploadBytes:      int64(maxUploadMB) << 20,
	}
}
