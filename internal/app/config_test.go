package app

import (
	"testing"
	"time"

	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{
		"APP_ENV", "PORT", "JWT_SECRET_KEY", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
		"LECTURE_REVIEW_WINDOW_DAYS", "MAX_UPLOAD_MB", "CORS_ALLOW_ORIGINS",
		"OBJECT_STORAGE_MODE", "STORAGE_EMULATOR_HOST", "MEDIA_GCS_BUCKET_NAME",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "8080" {
		t.Fatalf("port: got=%q", cfg.Port)
	}
	if cfg.LectureReviewWindow != 7*24*time.Hour {
		t.Fatalf("review window: got=%s", cfg.LectureReviewWindow)
	}
	if cfg.MaxUploadBytes != 50<<20 {
		t.Fatalf("max upload: got=%d", cfg.MaxUploadBytes)
	}
	if cfg.AccessTokenTTL != time.Hour || cfg.RefreshTokenTTL != 24*time.Hour {
		t.Fatalf("ttl: access=%s refresh=%s", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.IsProduction() {
		t.Fatalf("default env should not be production")
	}
	if cfg.Storage.Enabled() || cfg.StorageErr != nil {
		t.Fatalf("storage should be disabled without a bucket: %+v err=%v", cfg.Storage, cfg.StorageErr)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LECTURE_REVIEW_WINDOW_DAYS", "3")
	t.Setenv("MAX_UPLOAD_MB", "0")
	t.Setenv("ACCESS_TOKEN_TTL", "60")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := LoadConfig(logger.Nop())
	if !cfg.IsProduction() {
		t.Fatalf("APP_ENV=production should report production")
	}
	if cfg.LectureReviewWindow != 72*time.Hour {
		t.Fatalf("review window: got=%s", cfg.LectureReviewWindow)
	}
	if cfg.MaxUploadBytes != 50<<20 {
		t.Fatalf("non-positive MAX_UPLOAD_MB should fall back to the default, got=%d", cfg.MaxUploadBytes)
	}
	if cfg.AccessTokenTTL != time.Minute {
		t.Fatalf("access ttl: got=%s", cfg.AccessTokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("cors origins: got=%v", cfg.CORSOrigins)
	}
}
