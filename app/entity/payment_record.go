package entity

import "time"

const (
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// PaymentRecord is one row of the verification audit ledger. Rows are
// append-only: status and signature never change after the insert.
type PaymentRecord struct {
	ID uint64

	GatewayOrderID   string
	GatewayPaymentID string

	// Signature is stored verbatim as submitted, including on failed
	// verifications, so repeated forgery attempts can be reviewed later.
	Signature string

	Status      string
	AmountPaise int64
	Currency    string
	PayerEmail  string

	CreatedAt time.Time
}
