package transfers

import (
	"context"
	"fmt"

	"github.com/aethershare/aether/internal/client/models"
	"github.com/aethershare/aether/internal/dbx"
)

// SQLiteRepository stores history rows in SQLite. It accepts a dbx.DBTX so
// callers can bind it either to the database or to a transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, tr *models.Transfer) error {

	query := ` INSERT INTO transfers (id, name, direction, channel, size, encrypted, vibe, created_at)
			values (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, tr.Id, tr.Name, tr.Direction, tr.Channel, tr.Size, tr.Encrypted, tr.Vibe, tr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.Transfer, error) {

	query := ` select id, name, direction, channel, size, encrypted, vibe, created_at
			from transfers order by created_at desc limit ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select transfers: %w", err)
	}

	var result []models.Transfer

	defer rows.Close()
	for rows.Next() {
		var item = models.Transfer{}
		err := rows.Scan(&item.Id, &item.Name, &item.Direction, &item.Channel, &item.Size, &item.Encrypted, &item.Vibe, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Prune deletes all but the newest keep rows.
func (r *SQLiteRepository) Prune(ctx context.Context, keep int) error {

	query := ` delete from transfers where id not in (
			select id from transfers order by created_at desc limit ?)`
	_, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return fmt.Errorf("failed to prune transfers: %w", err)
	}

	return nil
}
