package app

import (
	"fmt"

	"github.com/yungbote/coursehub-backend/internal/clients/redis"
	"github.com/yungbote/coursehub-backend/internal/platform/gcp"
	"github.com/yungbote/coursehub-backend/internal/platform/logger"
	"github.com/yungbote/coursehub-backend/internal/platform/sendgrid"
)

// Clients holds the external collaborators. Any of them may be nil when unconfigured.
type Clients struct {
	EventBus redis.EventBus
	Mailer   sendgrid.Client
	Bucket   gcp.BucketService
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var bus redis.EventBus
	if cfg.RedisAddr != "" {
		b, err := redis.NewEventBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		bus = b
	} else {
		log.Warn("REDIS_ADDR not set; domain events will not be published")
	}

	// SendGrid
	var mailer sendgrid.Client
	if cfg.SendGrid.Enabled() {
		m, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			if bus != nil {
				_ = bus.Close()
			}
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		mailer = m
	} else {
		log.Warn("SENDGRID_API_KEY not set; notification email disabled")
	}

	// Gcs
	bucket, err := resolveBucketService(log, cfg)
	if err != nil {
		if bus != nil {
			_ = bus.Close()
		}
		return Clients{}, err
	}

	return Clients{
		EventBus: bus,
		Mailer:   mailer,
		Bucket:   bucket,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.EventBus != nil {
		_ = c.EventBus.Close()
	}
}
