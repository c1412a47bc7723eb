// Package services holds the client-side application services: the beam
// orchestration and the transfer history bookkeeping the CLI commands
// build on.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aethershare/aether/internal/client/client"
	"github.com/aethershare/aether/internal/client/models"
	"github.com/aethershare/aether/internal/client/repositories/transfers"
	"github.com/aethershare/aether/internal/dbx"
	"github.com/google/uuid"
)

// historyKeep is how many transfer records the local history retains.
const historyKeep = 200

type HistoryService interface {
	Record(ctx context.Context, tr *models.Transfer) error
	List(ctx context.Context, limit int) ([]models.Transfer, error)
}

type historyService struct {
	repos *client.Repositories
	now   func() time.Time
}

func NewHistoryService(repos *client.Repositories) HistoryService {
	return &historyService{repos: repos, now: time.Now}
}

// Record inserts a history row and prunes old ones in one transaction.
// A missing Id or CreatedAt is filled in.
func (s *historyService) Record(ctx context.Context, tr *models.Transfer) error {
	if tr.Id == "" {
		tr.Id = uuid.NewString()
	}
	if tr.CreatedAt == 0 {
		tr.CreatedAt = s.now().UnixMilli()
	}

	err := dbx.WithTx(ctx, s.repos.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := transfers.NewSQLiteRepository(tx)
		if err := r.Add(ctx, tr); err != nil {
			return err
		}
		return r.Prune(ctx, historyKeep)
	})
	if err != nil {
		return fmt.Errorf("recording transfer: %w", err)
	}
	return nil
}

func (s *historyService) List(ctx context.Context, limit int) ([]models.Transfer, error) {
	if limit <= 0 || limit > historyKeep {
		limit = historyKeep
	}
	return s.repos.Transfers.List(ctx, limit)
}
