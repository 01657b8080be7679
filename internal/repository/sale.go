package repository

import (
	"context"
	"fmt"

	"shipping-carrier-service/internal/domain"
)

// GetSale loads the sale with its lines and locks the row.
func (r *TxRepo) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	var s domain.Sale
	err := r.tx.QueryRow(ctx, `
        SELECT id, reference, currency_code, carrier_id, service_id, cost, cost_currency, weight_unit
        FROM sales
        WHERE id = $1
        FOR UPDATE
    `, id).Scan(&s.ID, &s.Reference, &s.CurrencyCode, &s.CarrierID, &s.ServiceID, &s.Cost, &s.CostCurrency, &s.WeightUnit)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale %d: %w", id, err)
	}

	rows, err := r.tx.Query(ctx, `
        SELECT id, sale_id, product_id, description, quantity, unit, unit_price, shipment_cost
        FROM sale_lines
        WHERE sale_id = $1
        ORDER BY id
    `, id)
	if err != nil {
		return nil, fmt.Errorf("list lines of sale %d: %w", id, err)
	}
	defer rows.Close()

	var (
		productIDs []*int64
		ids        []int64
	)
	for rows.Next() {
		var (
			l         domain.SaleLine
			productID *int64
		)
		if err := rows.Scan(&l.ID, &l.SaleID, &productID, &l.Description, &l.Quantity, &l.Unit, &l.UnitPrice, &l.ShipmentCost); err != nil {
			return nil, err
		}
		s.Lines = append(s.Lines, l)
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
			s.Lines[i].Product = byID[*pid]
		}
	}
	return &s, nil
}

// UpdateSaleShipping stores carrier, service and cost.
func (r *TxRepo) UpdateSaleShipping(ctx context.Context, id int64, sh domain.Shipping) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE sales
        SET carrier_id = $2, service_id = $3, cost = $4, cost_currency = $5
        WHERE id = $1
    `, id, sh.CarrierID, sh.ServiceID, sh.Cost, sh.CostCurrency)
	if err != nil {
		return fmt.Errorf("update sale %d shipping: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("sale %d not found", id)
	}
	return nil
}

// ReplaceShipmentCostLine removes every shipping cost line of the sale and inserts line.
func (r *TxRepo) ReplaceShipmentCostLine(ctx context.Context, saleID int64, line *domain.SaleLine) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM sale_lines WHERE sale_id = $1 AND shipment_cost`, saleID); err != nil {
		return fmt.Errorf("delete shipping lines of sale %d: %w", saleID, err)
	}

	var productID *int64
	if line.Product != nil {
		productID = &line.Product.ID
	}
	line.SaleID = saleID
	line.ShipmentCost = true
	err := r.tx.QueryRow(ctx, `
        INSERT INTO sale_lines (sale_id, product_id, description, quantity, unit, unit_price, shipment_cost)
        VALUES ($1, $2, $3, $4, $5, $6, true)
        RETURNING id
    `, saleID, productID, line.Description, line.Quantity, line.Unit, line.UnitPrice).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("insert shipping line of sale %d: %w", saleID, err)
	}
	return nil
}
