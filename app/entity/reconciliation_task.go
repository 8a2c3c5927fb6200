package entity

import "time"

// ReconciliationTask is a fire-once delayed check against a pending 3-D Secure
// step. It carries enough context to run unattended long after the original
// authorization call, including the credentials for the terminal write-back.
// Created when the intermediate response is persisted, consumed exactly once,
// never mutated.
type ReconciliationTask struct {
	RecordID uint64

	TaskKey string

	TenantID               string
	PaymentMethodID        string
	PaymentID              string
	PaymentTransactionID   string
	TransactionExternalKey string

	// TargetState selects the reconciliation variant, see service.TargetState.
	TargetState string

	Username string
	Password string

	FireAt     time.Time
	ExecutedAt *time.Time

	CreatedAt time.Time
}
