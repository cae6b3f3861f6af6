package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/repositories"
)

// TokenWorker removes expired refresh tokens so dead sessions do not
// pile up in the table.
type TokenWorker struct {
	db   *gorm.DB
	repo repositories.RefreshTokenRepository
}

func NewTokenWorker(db *gorm.DB) *TokenWorker {
	return &TokenWorker{
		db:   db,
		repo: repositories.NewRefreshTokenRepository(),
	}
}

func (w *TokenWorker) Start(ctx context.Context) {
	go w.cleanExpiredTokens(ctx)
}

func (w *TokenWorker) cleanExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Token worker stopped")
			return
		case <-ticker.C:
			removed, err := w.repo.CleanExpired(w.db)
			logger.WorkerLog("token", "clean_expired", err)
			if err == nil && removed > 0 {
				logger.Info("Removed expired refresh tokens", "count", removed)
			}
		}
	}
}
