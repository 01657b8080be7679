package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
)

// CostMethod selects which pricing and label strategy applies to a carrier.
type CostMethod string

// CostMethodProduct prices shipping with the list price of the carrier product.
const CostMethodProduct CostMethod = "product"

// Carrier is a shipping provider account.
type Carrier struct {
	ID           int64
	Name         string
	CostMethod   CostMethod
	CurrencyCode string
	Product      *Product
	Services     []Service
	BoxTypes     []BoxType
}

// Service is a named shipping speed/tier belonging to one cost method.
type Service struct {
	ID         int64
	Name       string
	Code       string
	CostMethod CostMethod
}

// BoxType is a named physical box or envelope.
type BoxType struct {
	ID           int64
	Name         string
	Code         string
	CostMethod   CostMethod
	Length       decimal.Decimal
	Width        decimal.Decimal
	Height       decimal.Decimal
	DistanceUnit string
}

// Validate checks that services and box types declare the carrier's cost method (or none).
func (c Carrier) Validate() error {
	for _, s := range c.Services {
		if s.CostMethod != "" && s.CostMethod != c.CostMethod {
			return fmt.Errorf("%w: service %q has cost method %q, carrier %q uses %q",
				apperr.ErrInvalid, s.Name, s.CostMethod, c.Name, c.CostMethod)
		}
	}
	for _, b := range c.BoxTypes {
		if b.CostMethod != "" && b.CostMethod != c.CostMethod {
			return fmt.Errorf("%w: box type %q has cost method %q, carrier %q uses %q",
				apperr.ErrInvalid, b.Name, b.CostMethod, c.Name, c.CostMethod)
		}
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CheckConfigured reports a carrier whose services or box types fail Validate as a
// configuration problem.
func (c Carrier) CheckConfigured() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: carrier %q: %v", apperr.ErrMissingConfiguration, c.Name, err)
	}
	return nil
}

// Service returns the carrier's service with the given id.
func (c Carrier) Service(id int64) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// BoxType returns the carrier's box type with the given id.
func (c Carrier) BoxType(id int64) (BoxType, bool) {
	for _, b := range c.BoxTypes {
		if b.ID == id {
			return b, true
		}
	}
	return BoxType{}, false
}

// Validate requires a distance unit once any dimension is set.
func (b BoxType) Validate() error {
	return validateDimensions("box type "+b.Name, b.Length, b.Width, b.Height, b.DistanceUnit)
}

func validateDimensions(what string, length, width, height decimal.Decimal, unit string) error {
	if (!length.IsZero() || !width.IsZero() || !height.IsZero()) && unit == "" {
		return fmt.Errorf("%w: %s: distance unit is required when dimensions are set", apperr.ErrInvalid, what)
	}
	return nil
}
