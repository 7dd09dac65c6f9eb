package postgres

import (
	"context"
	"fmt"

	"github.com/osdatum/backend/internal/domain"
)

// ApplicationRepository is the PostgreSQL implementation of repository.ApplicationRepository.
type ApplicationRepository struct {
	db DB
}

// NewApplicationRepository creates a new subscription application repository.
func NewApplicationRepository(db DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create stores a subscription application from the public form.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.SubscriptionApplication) error {
	query := `
		INSERT INTO subscription_applications (first_name, last_name, email, institution, job_title, purpose)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		app.FirstName, app.LastName, app.Email, app.Institution, app.JobTitle, app.Purpose,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		return fmt.Errorf("create subscription application: %w", err)
	}
	return nil
}
