// Package weight computes shipping weights of lines, moves, packages, shipments and sales.
package weight

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
	"shipping-carrier-service/internal/domain"
	"shipping-carrier-service/internal/uom"
)

// Calculator derives weights on demand. Aggregates are rounded with the configured policy;
// single items never are.
type Calculator struct {
	conv     uom.Converter
	rounding Rounding
	unit     string
}

// NewCalculator creates a Calculator. defaultUnit is used whenever a caller passes no target unit.
func NewCalculator(conv uom.Converter, rounding Rounding, defaultUnit string) *Calculator {
	if rounding == "" {
		rounding = RoundingNone
	}
	if defaultUnit == "" {
		defaultUnit = "kg"
	}
	return &Calculator{conv: conv, rounding: rounding, unit: defaultUnit}
}

// Unit returns the default target unit.
func (c *Calculator) Unit() string { return c.unit }

func (c *Calculator) target(unit string) string {
	if unit == "" {
		return c.unit
	}
	return unit
}

// ItemWeight is the weight of qty of product p expressed in unit, converted into target.
// Missing products, non-positive quantities and services weigh nothing. A product without
// a declared weight is ErrMissingWeight unless silent.
func (c *Calculator) ItemWeight(p *domain.Product, qty decimal.Decimal, unit, target string, silent bool) (decimal.Decimal, error) {
	if p == nil || !qty.IsPositive() || p.Type == domain.ProductService {
		return decimal.Zero, nil
	}
	if !p.HasWeight() {
		if silent {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("%w: product %q", apperr.ErrMissingWeight, p.Name)
	}
	if p.WeightUnit == "" {
		return decimal.Zero, fmt.Errorf("%w: product %q has no weight unit", apperr.ErrMissingConfiguration, p.Name)
	}

	if unit != "" && p.DefaultUnit != "" && unit != p.DefaultUnit {
		converted, err := c.conv.Convert(qty, unit, p.DefaultUnit)
		if err != nil {
			return decimal.Zero, fmt.Errorf("product %q quantity: %w", p.Name, err)
		}
		qty = converted
	}

	w := qty.Mul(p.Weight)
	target = c.target(target)
	if p.WeightUnit != target {
		converted, err := c.conv.Convert(w, p.WeightUnit, target)
		if err != nil {
			return decimal.Zero, fmt.Errorf("product %q weight: %w", p.Name, err)
		}
		w = converted
	}
	return w, nil
}

// MoveWeight is the weight of a stock move.
func (c *Calculator) MoveWeight(m domain.Move, target string, silent bool) (decimal.Decimal, error) {
	return c.ItemWeight(m.Product, m.Quantity, m.Unit, target, silent)
}

// LineWeight is the weight of a sale line.
func (c *Calculator) LineWeight(l domain.SaleLine, target string, silent bool) (decimal.Decimal, error) {
	return c.ItemWeight(l.Product, l.Quantity, l.Unit, target, silent)
}

func (c *Calculator) sumMoves(moves []domain.Move, target string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range moves {
		w, err := c.MoveWeight(m, target, true)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(w)
	}
	return total, nil
}

// PackageComputedWeight sums the weights of the moves owned by p.
func (c *Calculator) PackageComputedWeight(s *domain.Shipment, p domain.Package, target string) (decimal.Decimal, error) {
	w, err := c.sumMoves(s.PackageMoves(p), c.target(target))
	if err != nil {
		return decimal.Zero, fmt.Errorf("package %d: %w", p.ID, err)
	}
	return c.rounding.Apply(w), nil
}

// PackageWeight prefers the package override weight over the computed one.
func (c *Calculator) PackageWeight(s *domain.Shipment, p domain.Package, target string) (decimal.Decimal, error) {
	if !p.HasOverride() {
		return c.PackageComputedWeight(s, p, target)
	}
	if err := p.Validate(); err != nil {
		return decimal.Zero, err
	}
	w, err := c.conv.Convert(p.OverrideWeight, p.OverrideWeightUnit, c.target(target))
	if err != nil {
		return decimal.Zero, fmt.Errorf("package %d override: %w", p.ID, err)
	}
	return c.rounding.Apply(w), nil
}

// ShipmentPackageWeight is the shipment override weight if set, else the weight of all outgoing moves.
func (c *Calculator) ShipmentPackageWeight(s *domain.Shipment, target string) (decimal.Decimal, error) {
	target = c.target(target)
	if !s.OverrideWeight.IsZero() {
		if s.WeightUnit == "" {
			return decimal.Zero, fmt.Errorf("%w: %s: override weight unit is required", apperr.ErrInvalid, s.Label())
		}
		w, err := c.conv.Convert(s.OverrideWeight, s.WeightUnit, target)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s override: %w", s.Label(), err)
		}
		return c.rounding.Apply(w), nil
	}
	w, err := c.sumMoves(s.OutgoingMoves, target)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", s.Label(), err)
	}
	return c.rounding.Apply(w), nil
}

// ShipmentWeight sums package weights when the shipment has packages, else its outgoing moves.
func (c *Calculator) ShipmentWeight(s *domain.Shipment, target string) (decimal.Decimal, error) {
	target = c.target(target)
	if len(s.Packages) == 0 {
		w, err := c.sumMoves(s.OutgoingMoves, target)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s: %w", s.Label(), err)
		}
		return c.rounding.Apply(w), nil
	}
	total := decimal.Zero
	for _, p := range s.Packages {
		w, err := c.PackageWeight(s, p, target)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(w)
	}
	return c.rounding.Apply(total), nil
}

// SaleWeight sums the weights of the sale's goods lines. Shipping cost lines are skipped.
func (c *Calculator) SaleWeight(sale *domain.Sale, target string) (decimal.Decimal, error) {
	target = c.target(target)
	total := decimal.Zero
	for _, l := range sale.Lines {
		if l.ShipmentCost {
			continue
		}
		w, err := c.LineWeight(l, target, true)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s line %d: %w", sale.Label(), l.ID, err)
		}
		total = total.Add(w)
	}
	return c.rounding.Apply(total), nil
}
