//go:generate mockgen -source=contracts.go -destination=address_mocks_test.go -package=address_test

package address

import (
	"context"

	"shipping-carrier-service/internal/domain"
)

// Result is a provider's verdict: the address is exact or these are the closest matches.
type Result struct {
	Exact       bool             `json:"exact"`
	Suggestions []domain.Address `json:"suggestions,omitempty"`
}

// Validator checks an address against one carrier's address service.
type Validator interface {
	ValidateAddress(ctx context.Context, carrier domain.Carrier, addr domain.Address) (*Result, error)
}
