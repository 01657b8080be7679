package repository

import (
	"context"
	"fmt"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
)

const trackingColumns = `id, number, carrier_id, origin, is_master, url, state`

func scanTrackingNumber(row interface{ Scan(dest ...any) error }) (*domain.TrackingNumber, error) {
	var (
		tn     domain.TrackingNumber
		origin string
	)
	if err := row.Scan(&tn.ID, &tn.Number, &tn.CarrierID, &origin, &tn.IsMaster, &tn.URL, &tn.State); err != nil {
		return nil, err
	}
	o, err := domain.ParseOrigin(origin)
	if err != nil {
		return nil, fmt.Errorf("tracking number %d: %w", tn.ID, err)
	}
	tn.Origin = o
	return &tn, nil
}

func (r *TxRepo) queryTrackingNumbers(ctx context.Context, what, where string, args ...any) ([]domain.TrackingNumber, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+trackingColumns+` FROM tracking_numbers WHERE `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tracking numbers by %s: %w", what, err)
	}
	defer rows.Close()

	var out []domain.TrackingNumber
	for rows.Next() {
		tn, err := scanTrackingNumber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tn)
	}
	return out, rows.Err()
}

func (r *TxRepo) getTrackingNumber(ctx context.Context, what, where string, args ...any) (*domain.TrackingNumber, error) {
	tn, err := scanTrackingNumber(r.tx.QueryRow(ctx,
		`SELECT `+trackingColumns+` FROM tracking_numbers WHERE `+where+` FOR UPDATE`, args...))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tracking number %s: %w", what, err)
	}
	return tn, nil
}

// GetTrackingNumber returns the tracking number with the given id and locks it.
func (r *TxRepo) GetTrackingNumber(ctx context.Context, id int64) (*domain.TrackingNumber, error) {
	return r.getTrackingNumber(ctx, fmt.Sprint(id), `id = $1`, id)
}

// FindTrackingNumber returns the carrier's tracking number and locks it.
func (r *TxRepo) FindTrackingNumber(ctx context.Context, carrierID int64, number string) (*domain.TrackingNumber, error) {
	return r.getTrackingNumber(ctx, fmt.Sprintf("%q of carrier %d", number, carrierID),
		`carrier_id = $1 AND number = $2`, carrierID, number)
}

// InsertTrackingNumber stores a new tracking number. A carrier number can only be stored once.
func (r *TxRepo) InsertTrackingNumber(ctx context.Context, tn *domain.TrackingNumber) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO tracking_numbers (number, carrier_id, origin, is_master, url, state)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `, tn.Number, tn.CarrierID, tn.Origin.String(), tn.IsMaster, tn.URL, tn.State).Scan(&tn.ID)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("%w: tracking number %q", apperr.ErrConflict, tn.Number)
		}
		return fmt.Errorf("insert tracking number %q: %w", tn.Number, err)
	}
	return nil
}

// UpdateTrackingNumber stores state and url.
func (r *TxRepo) UpdateTrackingNumber(ctx context.Context, tn domain.TrackingNumber) error {
	ct, err := r.tx.Exec(ctx, `UPDATE tracking_numbers SET state = $2, url = $3 WHERE id = $1`, tn.ID, tn.State, tn.URL)
	if err != nil {
		return fmt.Errorf("update tracking number %d: %w", tn.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("tracking number %d not found", tn.ID)
	}
	return nil
}

// ListTrackingNumbersByState returns the tracking numbers in any of the states.
func (r *TxRepo) ListTrackingNumbersByState(ctx context.Context, states []domain.TrackingState) ([]domain.TrackingNumber, error) {
	raw := make([]string, len(states))
	for i, s := range states {
		raw[i] = string(s)
	}
	return r.queryTrackingNumbers(ctx, "state", `state = ANY($1)`, raw)
}

// ListTrackingNumbersByOrigin returns the tracking numbers issued for any of the origins.
func (r *TxRepo) ListTrackingNumbersByOrigin(ctx context.Context, origins []domain.Origin) ([]domain.TrackingNumber, error) {
	raw := make([]string, len(origins))
	for i, o := range origins {
		raw[i] = o.String()
	}
	return r.queryTrackingNumbers(ctx, "origin", `origin = ANY($1)`, raw)
}
