// Package app wires the review backend selected by configuration.
package app

import (
	"fmt"

	"github.com/ikkim/juveboxd-backend/config"
	"github.com/ikkim/juveboxd-backend/internal/app/repository"
	"github.com/ikkim/juveboxd-backend/internal/db"
	"github.com/ikkim/juveboxd-backend/internal/reviewstore"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
	"github.com/ikkim/juveboxd-backend/pkg/redis"
)

// Backend is an opened ReviewStore plus whatever it holds open.
type Backend struct {
	Store  reviewstore.ReviewStore
	Mirror *reviewstore.WebhookMirror // nil unless the local backend mirrors

	closers []func() error
}

// OpenBackend connects the backend named by cfg.Store.Backend.
func OpenBackend(cfg *config.Config) (*Backend, error) {
	b := &Backend{}
	stamper := reviewstore.NewStamper()

	switch cfg.Store.Backend {
	case config.BackendDatabase:
		if err := db.Initialize(&cfg.Database); err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		if err := db.Migrate(); err != nil {
			b.Close()
			return nil, err
		}
		b.Store = repository.NewReviewRepository(db.GetDB(), stamper)

	case config.BackendLocal:
		storage, err := b.openStorage(cfg)
		if err != nil {
			b.Close()
			return nil, err
		}
		var mirror reviewstore.Mirror
		if cfg.Mirror.URL != "" {
			b.Mirror = reviewstore.NewWebhookMirror(cfg.Mirror.URL, cfg.Mirror.Timeout)
			mirror = b.Mirror
		}
		b.Store = reviewstore.NewLocalStore(storage, mirror, stamper)

	case config.BackendRemote:
		remote, err := reviewstore.NewRemoteStore(reviewstore.RemoteConfig{
			BaseURL:        cfg.Remote.BaseURL,
			Timeout:        cfg.Remote.Timeout,
			BreakerEnabled: cfg.Remote.BreakerEnabled,
		})
		if err != nil {
			return nil, err
		}
		b.Store = remote

	default:
		return nil, fmt.Errorf("unknown review backend %q", cfg.Store.Backend)
	}

	logger.Info("Review backend ready", map[string]interface{}{
		"backend":       cfg.Store.Backend,
		"local_storage": cfg.Store.LocalStorage,
		"mirror":        b.Mirror != nil,
	})
	return b, nil
}

func (b *Backend) openStorage(cfg *config.Config) (reviewstore.Storage, error) {
	switch cfg.Store.LocalStorage {
	case config.LocalStorageMemory:
		return reviewstore.NewMemoryStorage(cfg.Store.LocalQuotaBytes), nil
	case config.LocalStorageFile:
		return reviewstore.NewFileStorage(cfg.Store.LocalDir, cfg.Store.LocalQuotaBytes)
	case config.LocalStorageRedis:
		client, err := redis.Init(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, redis.Close)
		return reviewstore.NewRedisStorage(client, "juveboxd:"), nil
	default:
		return nil, fmt.Errorf("unknown local storage %q", cfg.Store.LocalStorage)
	}
}

// Close waits for pending mirror writes, then releases connections in reverse order.
func (b *Backend) Close() {
	if b.Mirror != nil {
		b.Mirror.Wait()
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.Error("Failed to close review backend resource", err)
		}
	}
	b.closers = nil
}
