//go:generate mockgen -source=contracts.go -destination=tracking_mocks_test.go -package=tracking_test

package tracking

import (
	"context"

	"shipping-carrier-service/internal/domain"
)

// Update is what a carrier reports for a tracking number. An empty URL keeps the current one.
type Update struct {
	State domain.TrackingState
	URL   string
}

// Refresher polls a carrier's tracking API. A nil update means nothing changed.
type Refresher interface {
	Refresh(ctx context.Context, tn domain.TrackingNumber) (*Update, error)
}
