package repository

import (
	"context"
	"fmt"

	"shipping-carrier-service/internal/domain"
)

// GetShipment loads the shipment with its warehouse, addresses, moves and packages and locks the row.
func (r *TxRepo) GetShipment(ctx context.Context, id int64) (*domain.Shipment, error) {
	var (
		s                   domain.Shipment
		warehouseID, addrID *int64
	)
	err := r.tx.QueryRow(ctx, `
        SELECT id, reference, state, warehouse_id, delivery_address_id, carrier_id, service_id,
               cost, cost_currency, tracking_number_id, manifest_id, override_weight, weight_unit, instructions
        FROM shipments
        WHERE id = $1
        FOR UPDATE
    `, id).Scan(&s.ID, &s.Reference, &s.State, &warehouseID, &addrID, &s.CarrierID, &s.ServiceID,
		&s.Cost, &s.CostCurrency, &s.TrackingNumberID, &s.ManifestID, &s.OverrideWeight, &s.WeightUnit, &s.Instructions)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment %d: %w", id, err)
	}

	if warehouseID != nil {
		if s.Warehouse, err = r.warehouse(ctx, *warehouseID); err != nil {
			return nil, err
		}
	}
	if addrID != nil {
		if s.DeliveryAddress, err = r.address(ctx, *addrID); err != nil {
			return nil, err
		}
	}
	if s.OutgoingMoves, err = r.moves(ctx, s.ID); err != nil {
		return nil, err
	}
	if s.Packages, err = r.packages(ctx, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *TxRepo) address(ctx context.Context, id int64) (*domain.Address, error) {
	var a domain.Address
	err := r.tx.QueryRow(ctx, `
        SELECT id, name, street, zip, city, country, subdivision FROM addresses WHERE id = $1
    `, id).Scan(&a.ID, &a.Name, &a.Street, &a.Zip, &a.City, &a.Country, &a.Subdivision)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address %d: %w", id, err)
	}
	return &a, nil
}

func (r *TxRepo) warehouse(ctx context.Context, id int64) (*domain.Warehouse, error) {
	var (
		w                domain.Warehouse
		addrID, returnID *int64
	)
	err := r.tx.QueryRow(ctx, `
        SELECT id, name, address_id, return_address_id FROM warehouses WHERE id = $1
    `, id).Scan(&w.ID, &w.Name, &addrID, &returnID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse %d: %w", id, err)
	}
	if addrID != nil {
		if w.Address, err = r.address(ctx, *addrID); err != nil {
			return nil, err
		}
	}
	if returnID != nil {
		if w.ReturnAddress, err = r.address(ctx, *returnID); err != nil {
			return nil, err
		}
	}
	return &w, nil
}

func (r *TxRepo) moves(ctx context.Context, shipmentID int64) ([]domain.Move, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT id, product_id, quantity, unit FROM stock_moves WHERE shipment_id = $1 ORDER BY id
    `, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("list moves of shipment %d: %w", shipmentID, err)
	}
	defer rows.Close()

	var (
		out        []domain.Move
		productIDs []*int64
		ids        []int64
	)
	for rows.Next() {
		var (
			m         domain.Move
			productID *int64
		)
		if err := rows.Scan(&m.ID, &productID, &m.Quantity, &m.Unit); err != nil {
			return nil, err
		}
		out = append(out, m)
		productIDs = append(productIDs, productID)
		if productID != nil {
			ids = append(ids, *productID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	byID, err := products(ctx, r.tx, ids)
	if err != nil {
		return nil, err
	}
	for i, pid := range productIDs {
		if pid != nil {
			out[i].Product = byID[*pid]
		}
	}
	return out, nil
}

func (r *TxRepo) packages(ctx context.Context, shipmentID int64) ([]domain.Package, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT p.id, p.shipment_id, p.code, p.box_type_id, p.override_weight, p.override_weight_unit,
               p.length, p.width, p.height, p.distance_unit,
               COALESCE(array_agg(pm.move_id ORDER BY pm.position) FILTER (WHERE pm.move_id IS NOT NULL), '{}')
        FROM packages p
        LEFT JOIN package_moves pm ON pm.package_id = p.id
        WHERE p.shipment_id = $1
        GROUP BY p.id
        ORDER BY p.id
    `, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("list packages of shipment %d: %w", shipmentID, err)
	}
	defer rows.Close()

	var out []domain.Package
	for rows.Next() {
		var p domain.Package
		if err := rows.Scan(&p.ID, &p.ShipmentID, &p.Code, &p.BoxTypeID, &p.OverrideWeight, &p.OverrideWeightUnit,
			&p.Length, &p.Width, &p.Height, &p.DistanceUnit, &p.MoveIDs); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertShipment stores a new shipment with its moves. Packages are not copied.
func (r *TxRepo) InsertShipment(ctx context.Context, s *domain.Shipment) error {
	var warehouseID, addrID *int64
	if s.Warehouse != nil {
		warehouseID = &s.Warehouse.ID
	}
	if s.DeliveryAddress != nil && s.DeliveryAddress.ID != 0 {
		addrID = &s.DeliveryAddress.ID
	}

	err := r.tx.QueryRow(ctx, `
        INSERT INTO shipments (reference, state, warehouse_id, delivery_address_id, carrier_id, service_id,
                               cost, cost_currency, tracking_number_id, manifest_id, override_weight,
                               weight_unit, instructions)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id
    `, s.Reference, s.State, warehouseID, addrID, s.CarrierID, s.ServiceID, s.Cost, s.CostCurrency,
		s.TrackingNumberID, s.ManifestID, s.OverrideWeight, s.WeightUnit, s.Instructions).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}

	for i := range s.OutgoingMoves {
		m := &s.OutgoingMoves[i]
		var productID *int64
		if m.Product != nil {
			productID = &m.Product.ID
		}
		err := r.tx.QueryRow(ctx, `
            INSERT INTO stock_moves (shipment_id, product_id, quantity, unit)
            VALUES ($1, $2, $3, $4)
            RETURNING id
        `, s.ID, productID, m.Quantity, m.Unit).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("insert move of shipment %d: %w", s.ID, err)
		}
	}
	return nil
}

func (r *TxRepo) updateShipment(ctx context.Context, id int64, what, set string, args ...any) error {
	ct, err := r.tx.Exec(ctx, `UPDATE shipments SET `+set+` WHERE id = $1`, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update shipment %d %s: %w", id, what, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("shipment %d not found", id)
	}
	return nil
}

// UpdateShipmentShipping stores carrier, service and cost.
func (r *TxRepo) UpdateShipmentShipping(ctx context.Context, id int64, sh domain.Shipping) error {
	return r.updateShipment(ctx, id, "shipping",
		`carrier_id = $2, service_id = $3, cost = $4, cost_currency = $5`,
		sh.CarrierID, sh.ServiceID, sh.Cost, sh.CostCurrency)
}

// UpdateShipmentState stores the workflow state.
func (r *TxRepo) UpdateShipmentState(ctx context.Context, id int64, state domain.ShipmentState) error {
	return r.updateShipment(ctx, id, "state", `state = $2`, state)
}

// SetShipmentTracking points the shipment at a tracking number.
func (r *TxRepo) SetShipmentTracking(ctx context.Context, id int64, trackingID *int64) error {
	return r.updateShipment(ctx, id, "tracking number", `tracking_number_id = $2`, trackingID)
}

// SetShipmentManifest puts the shipment on a manifest.
func (r *TxRepo) SetShipmentManifest(ctx context.Context, id int64, manifestID *int64) error {
	return r.updateShipment(ctx, id, "manifest", `manifest_id = $2`, manifestID)
}

// InsertPackage stores a package and its moves.
func (r *TxRepo) InsertPackage(ctx context.Context, p *domain.Package) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO packages (shipment_id, code, box_type_id, override_weight, override_weight_unit,
                              length, width, height, distance_unit)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `, p.ShipmentID, p.Code, p.BoxTypeID, p.OverrideWeight, p.OverrideWeightUnit,
		p.Length, p.Width, p.Height, p.DistanceUnit).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert package: %w", err)
	}
	return r.setPackageMoves(ctx, p.ID, p.MoveIDs)
}

func (r *TxRepo) setPackageMoves(ctx context.Context, packageID int64, moveIDs []int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM package_moves WHERE package_id = $1`, packageID); err != nil {
		return fmt.Errorf("clear moves of package %d: %w", packageID, err)
	}
	if len(moveIDs) == 0 {
		return nil
	}
	_, err := r.tx.Exec(ctx, `
        INSERT INTO package_moves (package_id, move_id, position)
        SELECT $1, m.id, m.ord FROM unnest($2::bigint[]) WITH ORDINALITY AS m(id, ord)
    `, packageID, moveIDs)
	if err != nil {
		return fmt.Errorf("set moves of package %d: %w", packageID, err)
	}
	return nil
}

// UpdatePackage stores box type, override weight, dimensions and moves.
func (r *TxRepo) UpdatePackage(ctx context.Context, p domain.Package) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE packages
        SET code = $2, box_type_id = $3, override_weight = $4, override_weight_unit = $5,
            length = $6, width = $7, height = $8, distance_unit = $9
        WHERE id = $1
    `, p.ID, p.Code, p.BoxTypeID, p.OverrideWeight, p.OverrideWeightUnit, p.Length, p.Width, p.Height, p.DistanceUnit)
	if err != nil {
		return fmt.Errorf("update package %d: %w", p.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("package %d not found", p.ID)
	}
	return r.setPackageMoves(ctx, p.ID, p.MoveIDs)
}

// DeletePackages removes every package of the shipment.
func (r *TxRepo) DeletePackages(ctx context.Context, shipmentID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM packages WHERE shipment_id = $1`, shipmentID); err != nil {
		return fmt.Errorf("delete packages of shipment %d: %w", shipmentID, err)
	}
	return nil
}

// InsertAttachment stores a label document.
func (r *TxRepo) InsertAttachment(ctx context.Context, a *domain.Attachment) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO attachments (origin, name, mime_type, data) VALUES ($1, $2, $3, $4) RETURNING id
    `, a.Origin.String(), a.Name, a.MimeType, a.Data).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert attachment %q: %w", a.Name, err)
	}
	return nil
}

// InsertCarrierLog stores a carrier log line.
func (r *TxRepo) InsertCarrierLog(ctx context.Context, l *domain.CarrierLog) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO carrier_logs (sale_id, shipment_id, carrier_id, log, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `, l.SaleID, l.ShipmentID, l.CarrierID, l.Log, l.CreatedAt).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert carrier log: %w", err)
	}
	return nil
}
