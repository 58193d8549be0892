package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"floodwatch/internal/types"
)

func TestNotificationRepository_Create(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Create(ctx, &types.NotificationLog{
		ID:        "nl_1",
		AlertID:   "alert_1",
		Channel:   types.ChannelSMS,
		Recipient: "+639170000001",
		Status:    "sent",
		CreatedAt: time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestNotificationRepository_Create_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("disk full"))

	err := repo.Create(ctx, &types.NotificationLog{ID: "nl_1"})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestNotificationRepository_ListByAlert(t *testing.T) {
	db := new(mockDBTX)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	created := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	rows := newMockRows([][]any{
		{"nl_1", "alert_1", types.NotificationChannel("sms"), "+639170000001", "sent", created},
		{"nl_2", "alert_1", types.NotificationChannel("email"), "ana@example.com", "sent", created},
	})
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	out, err := repo.ListByAlert(ctx, "alert_1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, types.ChannelSMS, out[0].Channel)
	assert.Equal(t, "ana@example.com", out[1].Recipient)
}
