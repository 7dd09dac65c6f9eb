package postgres

import (
	"context"
	"fmt"

	"github.com/osdatum/backend/internal/domain"
)

// PurchaseRepository is the PostgreSQL implementation of repository.PurchaseRepository.
type PurchaseRepository struct {
	db DB
}

// NewPurchaseRepository creates a new purchase repository.
func NewPurchaseRepository(db DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create records a grid purchase. The insert is race-free: concurrent
// requests for the same (user, grid) pair collapse onto the primary key
// and exactly one writes a row. Returns false when the grid was already owned.
func (r *PurchaseRepository) Create(ctx context.Context, userID, gridID string) (bool, error) {
	query := `
		INSERT INTO purchases (user_id, grid_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, grid_id) DO NOTHING`

	tag, err := r.db.Exec(ctx, query, userID, gridID, domain.PurchaseStatusCompleted)
	if err != nil {
		return false, fmt.Errorf("create purchase: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListGridIDs returns the IDs of all grids the user has purchased, oldest first.
func (r *PurchaseRepository) ListGridIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT grid_id FROM purchases WHERE user_id = $1 ORDER BY purchased_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	gridIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		gridIDs = append(gridIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return gridIDs, nil
}
