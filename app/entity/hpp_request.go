package entity

import "time"

// HPPRequestRow records a hosted-payment-page redirect handed to a shopper.
type HPPRequestRow struct {
	RecordID uint64

	AccountID            string
	PaymentID            *string
	PaymentTransactionID *string
	TenantID             string

	TransactionExternalKey string

	AdditionalData string

	CreatedAt time.Time
}
