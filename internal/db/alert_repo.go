package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"floodwatch/internal/types"
)

// AlertRepository provides data access for the flood_alerts table and its
// barangay join table.
type AlertRepository struct {
	db DBTX
}

// NewAlertRepository creates a new AlertRepository backed by the given
// database connection (pool or transaction).
func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert record and its barangay associations. The
// caller must set the ID and CreatedAt before calling.
func (r *AlertRepository) Create(ctx context.Context, alert *types.FloodAlert) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO flood_alerts (id, title, description, severity_level, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		alert.ID,
		alert.Title,
		alert.Description,
		alert.SeverityLevel,
		alert.Active,
		alert.CreatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create alert", err)
	}

	for _, barangayID := range alert.AffectedBarangayIDs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO flood_alert_barangays (alert_id, barangay_id) VALUES ($1, $2)`,
			alert.ID,
			barangayID,
		)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to associate alert barangay", err)
		}
	}
	return nil
}

// GetByID retrieves an alert and its barangay IDs.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*types.FloodAlert, error) {
	var alert types.FloodAlert
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, severity_level, active, created_at
		 FROM flood_alerts
		 WHERE id = $1`,
		id,
	).Scan(
		&alert.ID,
		&alert.Title,
		&alert.Description,
		&alert.SeverityLevel,
		&alert.Active,
		&alert.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundAlert, "alert not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve alert", err)
	}

	ids, err := r.barangayIDs(ctx, alert.ID)
	if err != nil {
		return nil, err
	}
	alert.AffectedBarangayIDs = ids
	return &alert, nil
}

// ListActive returns the active alerts, newest first.
func (r *AlertRepository) ListActive(ctx context.Context) ([]types.FloodAlert, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, severity_level, active, created_at
		 FROM flood_alerts
		 WHERE active = TRUE
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list alerts", err)
	}
	defer rows.Close()

	var out []types.FloodAlert
	for rows.Next() {
		var alert types.FloodAlert
		if err := rows.Scan(
			&alert.ID,
			&alert.Title,
			&alert.Description,
			&alert.SeverityLevel,
			&alert.Active,
			&alert.CreatedAt,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan alert", err)
		}
		out = append(out, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate alerts", err)
	}

	for i := range out {
		ids, err := r.barangayIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].AffectedBarangayIDs = ids
	}
	return out, nil
}

// Deactivate marks an alert inactive. Returns ErrCodeNotFoundAlert when no
// row matches.
func (r *AlertRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE flood_alerts SET active = FALSE WHERE id = $1`,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to deactivate alert", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundAlert, "alert not found", nil)
	}
	return nil
}

func (r *AlertRepository) barangayIDs(ctx context.Context, alertID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT barangay_id FROM flood_alert_barangays WHERE alert_id = $1`,
		alertID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list alert barangays", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan alert barangay", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate alert barangays", err)
	}
	return ids, nil
}
