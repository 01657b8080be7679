package rating

// Options tunes a rating call.
type Options struct {
	// Silent skips carriers whose quote fails for a missing product weight.
	Silent bool
	// IgnoreCarrierComputation forces every quoted cost to zero.
	IgnoreCarrierComputation bool
}

// Request selects what to quote. A nil CarrierIDs quotes every configured carrier.
type Request struct {
	CarrierIDs []int64
	ServiceID  *int64
	BoxTypeID  *int64
	Options
}
