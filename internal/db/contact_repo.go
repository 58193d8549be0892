package db

import (
	"context"

	"floodwatch/internal/types"
)

// ContactRepository provides data access for emergency contacts and
// subscriber profiles, the two recipient sources for alert notifications.
type ContactRepository struct {
	db DBTX
}

// NewContactRepository creates a new ContactRepository backed by the given
// database connection (pool or transaction).
func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

// ListEmergencyContacts returns the emergency contacts of the given
// barangays.
func (r *ContactRepository) ListEmergencyContacts(ctx context.Context, barangayIDs []string) ([]types.EmergencyContact, error) {
	if len(barangayIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, barangay_id, name, phone
		 FROM emergency_contacts
		 WHERE barangay_id = ANY($1)`,
		barangayIDs,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list emergency contacts", err)
	}
	defer rows.Close()

	var out []types.EmergencyContact
	for rows.Next() {
		var c types.EmergencyContact
		if err := rows.Scan(&c.ID, &c.BarangayID, &c.Name, &c.Phone); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan emergency contact", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate emergency contacts", err)
	}
	return out, nil
}

// ListSubscribers returns the subscriber profiles assigned to any of the
// given barangays, or to a municipality that contains one of them.
func (r *ContactRepository) ListSubscribers(ctx context.Context, barangayIDs []string) ([]types.SubscriberProfile, error) {
	if len(barangayIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.username, p.email, p.phone_number,
		        COALESCE(p.municipality_id, ''), COALESCE(p.barangay_id, ''),
		        p.receive_email, p.receive_sms
		 FROM subscriber_profiles p
		 WHERE p.barangay_id = ANY($1)
		    OR p.municipality_id IN (
		         SELECT DISTINCT municipality_id FROM barangays WHERE id = ANY($1)
		       )`,
		barangayIDs,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list subscribers", err)
	}
	defer rows.Close()

	var out []types.SubscriberProfile
	for rows.Next() {
		var p types.SubscriberProfile
		if err := rows.Scan(
			&p.ID,
			&p.Username,
			&p.Email,
			&p.PhoneNumber,
			&p.MunicipalityID,
			&p.BarangayID,
			&p.ReceiveEmail,
			&p.ReceiveSMS,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan subscriber", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate subscribers", err)
	}
	return out, nil
}
