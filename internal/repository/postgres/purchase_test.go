package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osdatum/backend/internal/domain"
)

func newPurchaseRepo(t *testing.T) (*PurchaseRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPurchaseRepository(mock), mock
}

func TestPurchaseRepositoryCreate(t *testing.T) {
	repo, mock := newPurchaseRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO purchases")).
		WithArgs("user-1", "grid-42", domain.PurchaseStatusCompleted).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := repo.Create(context.Background(), "user-1", "grid-42")
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepositoryCreateAlreadyOwned(t *testing.T) {
	repo, mock := newPurchaseRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id, grid_id) DO NOTHING")).
		WithArgs("user-1", "grid-42", domain.PurchaseStatusCompleted).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	created, err := repo.Create(context.Background(), "user-1", "grid-42")
	require.NoError(t, err)
	assert.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepositoryCreateError(t *testing.T) {
	repo, mock := newPurchaseRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO purchases")).
		WithArgs("user-1", "grid-42", domain.PurchaseStatusCompleted).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Create(context.Background(), "user-1", "grid-42")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepositoryListGridIDs(t *testing.T) {
	repo, mock := newPurchaseRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT grid_id FROM purchases WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"grid_id"}).
			AddRow("grid-1").
			AddRow("grid-7"))

	grids, err := repo.ListGridIDs(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"grid-1", "grid-7"}, grids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseRepositoryListGridIDsEmpty(t *testing.T) {
	repo, mock := newPurchaseRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT grid_id FROM purchases")).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"grid_id"}))

	grids, err := repo.ListGridIDs(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, grids)
	assert.Empty(t, grids)
	require.NoError(t, mock.ExpectationsWereMet())
}
