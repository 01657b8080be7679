package domain

import "time"

// CarrierConfig is the persisted carrier configuration singleton.
type CarrierConfig struct {
	DefaultValidationCarrierID *int64
	SaveCarrierLogs            bool
}

// CarrierLog is a human-readable record of a carrier interaction.
// Exactly one of SaleID and ShipmentID is set.
type CarrierLog struct {
	ID         int64
	SaleID     *int64
	ShipmentID *int64
	CarrierID  int64
	Log        string
	CreatedAt  time.Time
}

// Attachment is a stored label document.
type Attachment struct {
	ID       int64
	Origin   Origin
	Name     string
	MimeType string
	Data     []byte
}
