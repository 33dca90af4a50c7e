package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
)

var newBucketServiceWithConfig = gcp.NewBucketServiceWithConfig

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidConfig StorageProviderBootstrapErrorCode = "invalid_config"
	StorageProviderBootstrapErrorConnectFailed StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBucketService returns a nil bucket when storage is disabled. Uploads then
// fail with storage_unavailable while the rest of the API keeps serving.
func resolveBucketService(log *logger.Logger, cfg Config) (gcp.BucketService, error) {
	if cfg.StorageErr != nil {
		err := classifyStorageProviderBootstrapError(cfg.Storage, cfg.StorageErr)
		log.Error("Object storage config invalid", "mode", cfg.Storage.Mode, "error", err)
		return nil, err
	}
	if !cfg.Storage.Enabled() {
		log.Warn("Object storage disabled; uploads will be rejected", "mode", cfg.Storage.Mode)
		return nil, nil
	}

	log.Info(
		"Selecting object storage provider",
		"mode", cfg.Storage.Mode,
		"emulator_host", cfg.Storage.EmulatorHost,
		"media_bucket", cfg.Storage.MediaBucket,
	)
	bucket, err := newBucketServiceWithConfig(log, cfg.Storage)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(cfg.Storage, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", cfg.Storage.Mode,
			"emulator_host", cfg.Storage.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func classifyStorageProviderBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		code = StorageProviderBootstrapErrorInvalidConfig
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
