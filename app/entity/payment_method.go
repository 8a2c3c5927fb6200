package entity

import "time"

// PaymentMethodRow stores the gateway token and card summary for a payment
// method. Card numbers are never persisted, only the recurring token and the
// display fields.
type PaymentMethodRow struct {
	RecordID uint64

	AccountID       string
	PaymentMethodID string
	TenantID        string

	Token       *string
	CCType      *string
	CCLast4     *string
	CCExpMonth  *int32
	CCExpYear   *int32
	IsDefault   bool
	IsDeleted   bool

	AdditionalData string

	CreatedAt time.Time
	UpdatedAt time.Time
}
