// Package uom converts quantities between units of measure of the same category.
package uom

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
)

// Category groups units that can be converted into each other.
type Category string

// Unit categories
const (
	Weight Category = "weight"
	Length Category = "length"
	Count  Category = "unit"
)

// Unit is a unit of measure. Factor is the size of one unit in the category base unit.
type Unit struct {
	Symbol   string
	Category Category
	Factor   decimal.Decimal
}

// Converter converts a quantity from one unit into another.
type Converter interface {
	Convert(qty decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// Table is an in-memory unit registry.
type Table struct {
	units map[string]Unit
}

// NewTable builds a table from the given units.
func NewTable(units ...Unit) *Table {
	t := &Table{units: make(map[string]Unit, len(units))}
	for _, u := range units {
		t.units[u.Symbol] = u
	}
	return t
}

// Default returns the built-in units: kg, g, lb, oz, unit, dozen, m, cm, in.
func Default() *Table {
	return NewTable(
		Unit{Symbol: "kg", Category: Weight, Factor: decimal.NewFromInt(1)},
		Unit{Symbol: "g", Category: Weight, Factor: decimal.New(1, -3)},
		Unit{Symbol: "lb", Category: Weight, Factor: decimal.RequireFromString("0.45359237")},
		Unit{Symbol: "oz", Category: Weight, Factor: decimal.RequireFromString("0.028349523125")},
		Unit{Symbol: "unit", Category: Count, Factor: decimal.NewFromInt(1)},
		Unit{Symbol: "dozen", Category: Count, Factor: decimal.NewFromInt(12)},
		Unit{Symbol: "m", Category: Length, Factor: decimal.NewFromInt(1)},
		Unit{Symbol: "cm", Category: Length, Factor: decimal.New(1, -2)},
		Unit{Symbol: "in", Category: Length, Factor: decimal.RequireFromString("0.0254")},
	)
}

// Lookup returns the unit registered under symbol.
func (t *Table) Lookup(symbol string) (Unit, error) {
	u, ok := t.units[symbol]
	if !ok {
		return Unit{}, fmt.Errorf("%w: unit %q", apperr.ErrNotFound, symbol)
	}
	return u, nil
}

// Convert implements Converter.
func (t *Table) Convert(qty decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return qty, nil
	}
	src, err := t.Lookup(from)
	if err != nil {
		return decimal.Zero, err
	}
	dst, err := t.Lookup(to)
	if err != nil {
		return decimal.Zero, err
	}
	if src.Category != dst.Category {
		return decimal.Zero, fmt.Errorf("%w: cannot convert %s (%s) to %s (%s)",
			apperr.ErrInvalid, from, src.Category, to, dst.Category)
	}
	return qty.Mul(src.Factor).Div(dst.Factor), nil
}
