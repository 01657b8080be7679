package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
)

// Package is a physical container holding a subset of a shipment's moves.
type Package struct {
	ID                 int64
	ShipmentID         int64
	Code               string
	BoxTypeID          *int64
	MoveIDs            []int64
	OverrideWeight     decimal.Decimal
	OverrideWeightUnit string
	Length             decimal.Decimal
	Width              decimal.Decimal
	Height             decimal.Decimal
	DistanceUnit       string
}

// HasOverride reports whether a per-package override weight is set.
func (p Package) HasOverride() bool { return !p.OverrideWeight.IsZero() }

// Validate checks the unit requirements for override weight and dimensions.
func (p Package) Validate() error {
	if p.HasOverride() && p.OverrideWeightUnit == "" {
		return fmt.Errorf("%w: package %d: override weight unit is required", apperr.ErrInvalid, p.ID)
	}
	return validateDimensions(fmt.Sprintf("package %d", p.ID), p.Length, p.Width, p.Height, p.DistanceUnit)
}

// SameBoxType reports whether p already uses the box type id.
func (p Package) SameBoxType(id *int64) bool {
	switch {
	case p.BoxTypeID == nil && id == nil:
		return true
	case p.BoxTypeID == nil || id == nil:
		return false
	default:
		return *p.BoxTypeID == *id
	}
}
