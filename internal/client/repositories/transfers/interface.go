// Package transfers persists the local transfer history.
package transfers

import (
	"context"

	"github.com/aethershare/aether/internal/client/models"
)

// Repository is the storage surface for transfer history records.
type Repository interface {
	Add(ctx context.Context, tr *models.Transfer) error
	List(ctx context.Context, limit int) ([]models.Transfer, error)
	Prune(ctx context.Context, keep int) error
}
