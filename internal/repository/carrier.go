package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shipping-carrier-service/internal/domain"
)

const carrierColumns = `id, name, cost_method, currency_code, product_id`

// CarrierRepo reads carriers outside of a unit of work.
type CarrierRepo struct{ db *pgxpool.Pool }

// NewCarrierRepo creates a new CarrierRepo.
func NewCarrierRepo(db *pgxpool.Pool) *CarrierRepo { return &CarrierRepo{db: db} }

// Get returns the carrier with its product, services and box types.
func (r *CarrierRepo) Get(ctx context.Context, id int64) (*domain.Carrier, error) {
	return getCarrier(ctx, r.db, id)
}

// List returns all carriers ordered by id.
func (r *CarrierRepo) List(ctx context.Context) ([]domain.Carrier, error) {
	return listCarriers(ctx, r.db)
}

// GetCarrier returns the carrier with its product, services and box types.
func (r *TxRepo) GetCarrier(ctx context.Context, id int64) (*domain.Carrier, error) {
	return getCarrier(ctx, r.tx, id)
}

// ListCarriers returns all carriers ordered by id.
func (r *TxRepo) ListCarriers(ctx context.Context) ([]domain.Carrier, error) {
	return listCarriers(ctx, r.tx)
}

// GetCarrierConfig returns the configuration singleton; a missing row is the zero configuration.
func (r *TxRepo) GetCarrierConfig(ctx context.Context) (domain.CarrierConfig, error) {
	var cfg domain.CarrierConfig
	err := r.tx.QueryRow(ctx,
		`SELECT default_validation_carrier_id, save_carrier_logs FROM carrier_configuration WHERE id = 1`,
	).Scan(&cfg.DefaultValidationCarrierID, &cfg.SaveCarrierLogs)
	if err != nil && !IsNotFound(err) {
		return domain.CarrierConfig{}, fmt.Errorf("get carrier configuration: %w", err)
	}
	return cfg, nil
}

func getCarrier(ctx context.Context, q querier, id int64) (*domain.Carrier, error) {
	var (
		c         domain.Carrier
		productID *int64
	)
	err := q.QueryRow(ctx, `SELECT `+carrierColumns+` FROM carriers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CostMethod, &c.CurrencyCode, &productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get carrier %d: %w", id, err)
	}
	if err := loadCarrierDetails(ctx, q, &c, productID); err != nil {
		return nil, err
	}
	return &c, nil
}

func listCarriers(ctx context.Context, q querier) ([]domain.Carrier, error) {
	rows, err := q.Query(ctx, `SELECT `+carrierColumns+` FROM carriers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	defer rows.Close()

	var (
		out      []domain.Carrier
		products []*int64
	)
	for rows.Next() {
		var (
			c         domain.Carrier
			productID *int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.CostMethod, &c.CurrencyCode, &productID); err != nil {
			return nil, err
		}
		out = append(out, c)
		products = append(products, productID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		if err := loadCarrierDetails(ctx, q, &out[i], products[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func loadCarrierDetails(ctx context.Context, q querier, c *domain.Carrier, productID *int64) error {
	if productID != nil {
		p, err := getProduct(ctx, q, *productID)
		if err != nil {
			return err
		}
		c.Product = p
	}

	rows, err := q.Query(ctx,
		`SELECT s.id, s.name, s.code, s.cost_method
         FROM carrier_services s
         JOIN carrier_carrier_services cs ON cs.service_id = s.id
         WHERE cs.carrier_id = $1 ORDER BY s.id`, c.ID)
	if err != nil {
		return fmt.Errorf("list services of carrier %d: %w", c.ID, err)
	}
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.CostMethod); err != nil {
			rows.Close()
			return err
		}
		c.Services = append(c.Services, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
        SELECT b.id, b.name, b.code, b.cost_method, b.length, b.width, b.height, b.distance_unit
        FROM box_types b
        JOIN carrier_box_types cb ON cb.box_type_id = b.id
        WHERE cb.carrier_id = $1 ORDER BY b.id
    `, c.ID)
	if err != nil {
		return fmt.Errorf("list box types of carrier %d: %w", c.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var b domain.BoxType
		if err := rows.Scan(&b.ID, &b.Name, &b.Code, &b.CostMethod, &b.Length, &b.Width, &b.Height, &b.DistanceUnit); err != nil {
			return err
		}
		c.BoxTypes = append(c.BoxTypes, b)
	}
	return rows.Err()
}

const productColumns = `id, name, type, default_unit, sale_unit, list_price, weight, weight_unit`

func scanProduct(row interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.DefaultUnit, &p.SaleUnit, &p.ListPrice, &p.Weight, &p.WeightUnit)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func getProduct(ctx context.Context, q querier, id int64) (*domain.Product, error) {
	p, err := scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// products loads the given products keyed by id.
func products(ctx context.Context, q querier, ids []int64) (map[int64]*domain.Product, error) {
	out := make(map[int64]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
