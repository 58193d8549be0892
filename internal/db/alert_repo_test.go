package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"floodwatch/internal/types"
)

func TestAlertRepository_Create(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAlertRepository(db)
	ctx := context.Background()

	alert := &types.FloodAlert{
		ID:                  "alert_1",
		Title:               "River rising",
		Description:         "Water level approaching flood stage",
		SeverityLevel:       types.SeverityWarning,
		Active:              true,
		AffectedBarangayIDs: []string{"brgy_1", "brgy_2"},
		CreatedAt:           time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
	}

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil).Times(3)

	require.NoError(t, repo.Create(ctx, alert))
	db.AssertExpectations(t)
}

func TestAlertRepository_Create_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAlertRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("constraint violation"))

	err := repo.Create(ctx, &types.FloodAlert{ID: "alert_x"})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestAlertRepository_GetByID(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAlertRepository(db)
	ctx := context.Background()

	created := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*string) = "alert_1"
			*dest[1].(*string) = "River rising"
			*dest[2].(*string) = "Water level approaching flood stage"
			*dest[3].(*types.AlertSeverity) = types.SeverityWatch
			*dest[4].(*bool) = true
			*dest[5].(*time.Time) = created
			return nil
		}})
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows([][]any{{"brgy_1"}, {"brgy_2"}}), nil)

	alert, err := repo.GetByID(ctx, "alert_1")
	require.NoError(t, err)
	assert.Equal(t, types.SeverityWatch, alert.SeverityLevel)
	assert.Equal(t, []string{"brgy_1", "brgy_2"}, alert.AffectedBarangayIDs)
	assert.Equal(t, created, alert.CreatedAt)
}

func TestAlertRepository_GetByID_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAlertRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	_, err := repo.GetByID(ctx, "alert_missing")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundAlert, appErr.Code)
}

func TestAlertRepository_Deactivate_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAlertRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := repo.Deactivate(ctx, "alert_missing")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundAlert, appErr.Code)
}
