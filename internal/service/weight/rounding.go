package weight

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shipping-carrier-service/internal/apperr"
)

// Rounding is the post-processing applied to aggregate weights.
type Rounding string

// Rounding policies
const (
	RoundingNone      Rounding = "none"
	RoundingCeil      Rounding = "ceil"
	RoundingQuantize2 Rounding = "quantize2"
)

// ParseRounding validates a policy name. Empty means none.
func ParseRounding(s string) (Rounding, error) {
	switch r := Rounding(s); r {
	case "":
		return RoundingNone, nil
	case RoundingNone, RoundingCeil, RoundingQuantize2:
		return r, nil
	default:
		return "", fmt.Errorf("%w: weight rounding %q", apperr.ErrInvalid, s)
	}
}

// Apply rounds w according to the policy.
func (r Rounding) Apply(w decimal.Decimal) decimal.Decimal {
	switch r {
	case RoundingCeil:
		return w.Ceil()
	case RoundingQuantize2:
		return w.Round(2)
	default:
		return w
	}
}
