package entity

import "time"

// NotificationRow is one asynchronous server-to-server event pushed by the
// gateway. Identity fields are nullable because a notification can arrive
// before the local identifiers are known.
type NotificationRow struct {
	RecordID uint64

	AccountID            *string
	PaymentID            *string
	PaymentTransactionID *string
	TenantID             *string

	TransactionType *string

	AmountCents *int64
	Currency    *string

	EventCode         string
	Success           bool
	PSPReference      *string
	OriginalReference *string
	MerchantReference *string
	Reason            *string

	AdditionalData string

	CreatedAt time.Time
}
