package gcp

import (
	"errors"
	"testing"
)

func clearStorageEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OBJECT_STORAGE_MODE",
		"STORAGE_EMULATOR_HOST",
		"MEDIA_GCS_BUCKET_NAME",
		"AVATAR_GCS_BUCKET_NAME",
		"MEDIA_CDN_DOMAIN",
		"AVATAR_CDN_DOMAIN",
		"OBJECT_STORAGE_PUBLIC_BASE_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestResolveObjectStorageConfigDisabledWithoutBucket(t *testing.T) {
	clearStorageEnv(t)

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeDisabled {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeDisabled, cfg.Mode)
	}
	if cfg.Enabled() {
		t.Fatalf("disabled config should not report enabled")
	}
}

func TestResolveObjectStorageConfigInfersGCS(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("MEDIA_GCS_BUCKET_NAME", "coursehub-media")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
	if cfg.AvatarBucket != "coursehub-media" {
		t.Fatalf("avatar bucket should fall back to media bucket, got=%q", cfg.AvatarBucket)
	}
}

func TestResolveObjectStorageConfigEmulator(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("MEDIA_GCS_BUCKET_NAME", "media")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443/")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCSEmulator, cfg.Mode)
	}
	if cfg.PublicBaseURL != "http://fake-gcs:4443" {
		t.Fatalf("public base url: got=%q", cfg.PublicBaseURL)
	}
}

func TestResolveObjectStorageConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		code ObjectStorageConfigErrorCode
	}{
		{"invalid mode", map[string]string{"OBJECT_STORAGE_MODE": "s3"}, ObjectStorageConfigErrorInvalidMode},
		{"missing bucket", map[string]string{"OBJECT_STORAGE_MODE": "gcs"}, ObjectStorageConfigErrorMissingBucket},
		{"missing emulator host", map[string]string{"OBJECT_STORAGE_MODE": "gcs_emulator", "MEDIA_GCS_BUCKET_NAME": "m"}, ObjectStorageConfigErrorMissingEmulatorHost},
		{"relative emulator host", map[string]string{"OBJECT_STORAGE_MODE": "gcs_emulator", "MEDIA_GCS_BUCKET_NAME": "m", "STORAGE_EMULATOR_HOST": "fake-gcs"}, ObjectStorageConfigErrorInvalidURL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearStorageEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := ResolveObjectStorageConfigFromEnv()
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ObjectStorageConfigError, got %v", err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, cfgErr.Code)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  bucketConfig
		mode ObjectStorageMode
		base string
		want string
	}{
		{"cdn", bucketConfig{name: "m", cdnDomain: "cdn.example.com"}, ObjectStorageModeGCS, "", "https://cdn.example.com/lectures/a.mp4"},
		{"gcs default", bucketConfig{name: "m"}, ObjectStorageModeGCS, "", "https://storage.googleapis.com/m/lectures/a.mp4"},
		{"emulator", bucketConfig{name: "m"}, ObjectStorageModeGCSEmulator, "http://localhost:4443", "http://localhost:4443/storage/v1/b/m/o/lectures%2Fa.mp4?alt=media"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := publicURL(tc.cfg, tc.mode, tc.base, "/lectures/a.mp4"); got != tc.want {
				t.Fatalf("publicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}
