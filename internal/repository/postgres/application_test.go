package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osdatum/backend/internal/domain"
)

func TestApplicationRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	repo := NewApplicationRepository(mock)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subscription_applications")).
		WithArgs("Siti", "Rahma", "siti@example.com", "BRIN", "Researcher", "Bathymetry analysis").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	app := &domain.SubscriptionApplication{
		FirstName:   "Siti",
		LastName:    "Rahma",
		Email:       "siti@example.com",
		Institution: "BRIN",
		JobTitle:    "Researcher",
		Purpose:     "Bathymetry analysis",
	}
	require.NoError(t, repo.Create(context.Background(), app))
	assert.Equal(t, int64(7), app.ID)
	assert.Equal(t, now, app.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
