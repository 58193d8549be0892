package db

import (
	"context"

	"floodwatch/internal/types"
)

// NotificationRepository provides data access for the notification_logs
// table.
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new NotificationRepository backed by
// the given database connection (pool or transaction).
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create appends one notification log row.
func (r *NotificationRepository) Create(ctx context.Context, log *types.NotificationLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notification_logs (id, alert_id, channel, recipient, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		log.ID,
		log.AlertID,
		log.Channel,
		log.Recipient,
		log.Status,
		log.CreatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create notification log", err)
	}
	return nil
}

// ListByAlert returns the notification logs of one alert, oldest first.
func (r *NotificationRepository) ListByAlert(ctx context.Context, alertID string) ([]types.NotificationLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, alert_id, channel, recipient, status, created_at
		 FROM notification_logs
		 WHERE alert_id = $1
		 ORDER BY created_at`,
		alertID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list notification logs", err)
	}
	defer rows.Close()

	var out []types.NotificationLog
	for rows.Next() {
		var l types.NotificationLog
		if err := rows.Scan(&l.ID, &l.AlertID, &l.Channel, &l.Recipient, &l.Status, &l.CreatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan notification log", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate notification logs", err)
	}
	return out, nil
}
