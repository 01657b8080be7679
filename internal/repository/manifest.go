package repository

import (
	"context"
	"fmt"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
)

// GetManifest returns the manifest and locks it.
func (r *TxRepo) GetManifest(ctx context.Context, id int64) (*domain.Manifest, error) {
	var m domain.Manifest
	err := r.tx.QueryRow(ctx, `
        SELECT id, carrier_id, warehouse_id, state, close_date FROM manifests WHERE id = $1 FOR UPDATE
    `, id).Scan(&m.ID, &m.CarrierID, &m.WarehouseID, &m.State, &m.CloseDate)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get manifest %d: %w", id, err)
	}
	return &m, nil
}

// ListOpenManifests returns the open manifests of a carrier and warehouse.
func (r *TxRepo) ListOpenManifests(ctx context.Context, carrierID, warehouseID int64) ([]domain.Manifest, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT id, carrier_id, warehouse_id, state, close_date
        FROM manifests
        WHERE carrier_id = $1 AND warehouse_id = $2 AND state = $3
        ORDER BY id
    `, carrierID, warehouseID, domain.ManifestOpen)
	if err != nil {
		return nil, fmt.Errorf("list open manifests: %w", err)
	}
	defer rows.Close()

	var out []domain.Manifest
	for rows.Next() {
		var m domain.Manifest
		if err := rows.Scan(&m.ID, &m.CarrierID, &m.WarehouseID, &m.State, &m.CloseDate); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertManifest stores a new manifest. A second open manifest for the same carrier and
// warehouse is a conflict.
func (r *TxRepo) InsertManifest(ctx context.Context, m *domain.Manifest) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO manifests (carrier_id, warehouse_id, state, close_date) VALUES ($1, $2, $3, $4) RETURNING id
    `, m.CarrierID, m.WarehouseID, m.State, m.CloseDate).Scan(&m.ID)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("%w: an open manifest exists for carrier %d and warehouse %d",
				apperr.ErrConflict, m.CarrierID, m.WarehouseID)
		}
		return fmt.Errorf("insert manifest: %w", err)
	}
	return nil
}

// UpdateManifest stores state and close date.
func (r *TxRepo) UpdateManifest(ctx context.Context, m domain.Manifest) error {
	ct, err := r.tx.Exec(ctx, `UPDATE manifests SET state = $2, close_date = $3 WHERE id = $1`, m.ID, m.State, m.CloseDate)
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("%w: manifest %d", apperr.ErrConflict, m.ID)
		}
		return fmt.Errorf("update manifest %d: %w", m.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("manifest %d not found", m.ID)
	}
	return nil
}
