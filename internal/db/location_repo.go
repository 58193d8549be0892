package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"floodwatch/internal/types"
)

// LocationRepository provides data access for the municipalities and
// barangays tables.
type LocationRepository struct {
	db DBTX
}

// NewLocationRepository creates a new LocationRepository backed by the given
// database connection (pool or transaction).
func NewLocationRepository(db DBTX) *LocationRepository {
	return &LocationRepository{db: db}
}

// ListMunicipalities returns every municipality ordered by name.
func (r *LocationRepository) ListMunicipalities(ctx context.Context) ([]types.Municipality, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name
		 FROM municipalities
		 ORDER BY name`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list municipalities", err)
	}
	defer rows.Close()

	var out []types.Municipality
	for rows.Next() {
		var m types.Municipality
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan municipality", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate municipalities", err)
	}
	return out, nil
}

// GetMunicipality retrieves a municipality by ID. Returns
// ErrCodeNotFoundMunicipality when no row matches.
func (r *LocationRepository) GetMunicipality(ctx context.Context, id string) (*types.Municipality, error) {
	var m types.Municipality
	err := r.db.QueryRow(ctx,
		`SELECT id, name FROM municipalities WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundMunicipality, "municipality not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve municipality", err)
	}
	return &m, nil
}

// ListBarangays returns the barangays of one municipality ordered by name.
// The municipality must exist; an unknown ID yields
// ErrCodeNotFoundMunicipality.
func (r *LocationRepository) ListBarangays(ctx context.Context, municipalityID string) ([]types.Barangay, error) {
	if _, err := r.GetMunicipality(ctx, municipalityID); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, municipality_id, name
		 FROM barangays
		 WHERE municipality_id = $1
		 ORDER BY name`,
		municipalityID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list barangays", err)
	}
	defer rows.Close()

	var out []types.Barangay
	for rows.Next() {
		var b types.Barangay
		if err := rows.Scan(&b.ID, &b.MunicipalityID, &b.Name); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan barangay", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate barangays", err)
	}
	return out, nil
}

// GetBarangays retrieves the barangays with the given IDs. IDs that match no
// row are silently absent from the result.
func (r *LocationRepository) GetBarangays(ctx context.Context, ids []string) ([]types.Barangay, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, municipality_id, name
		 FROM barangays
		 WHERE id = ANY($1)
		 ORDER BY name`,
		ids,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve barangays", err)
	}
	defer rows.Close()

	var out []types.Barangay
	for rows.Next() {
		var b types.Barangay
		if err := rows.Scan(&b.ID, &b.MunicipalityID, &b.Name); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan barangay", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate barangays", err)
	}
	return out, nil
}
