//go:generate mockgen -source=contracts.go -destination=label_mocks_test.go -package=label_test

package label

import (
	"context"

	"shipping-carrier-service/internal/domain"
)

// Request is what a label generator receives: the packed shipment and its carrier.
type Request struct {
	Shipment *domain.Shipment
	Carrier  domain.Carrier
	// WeightUnit is the unit package weights should be reported in.
	WeightUnit string
}

// Issued is a tracking number returned by a carrier. A nil Origin means the whole shipment.
type Issued struct {
	Number   string
	URL      string
	Origin   domain.Origin
	IsMaster bool
}

// Document is a raw label returned by a carrier.
type Document struct {
	Name     string
	MimeType string
	Data     []byte
	Origin   domain.Origin
}

// Result is a successful label call.
type Result struct {
	Numbers []Issued
	Labels  []Document
}

// Generator produces labels for one carrier cost method.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
