package entity

import (
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

// ResponseRow is one gateway interaction attempt for a payment transaction.
// Rows are append-only; the latest row by record id is authoritative for the
// transaction's current state. A single transaction accumulates several rows
// across 3-D Secure steps, all sharing the same payment transaction id.
type ResponseRow struct {
	RecordID uint64

	AccountID            string
	PaymentID            string
	PaymentTransactionID string
	TenantID             string

	TransactionType types.TransactionType

	AmountCents *int64
	Currency    *string

	PSPResult     *string
	PSPReference  *string
	AuthCode      *string
	ResultCode    *string
	RefusalReason *string
	Reference     *string

	// 3-D Secure v1 redirect scratch fields. The v2 tokens (threeDS2Token,
	// threeDSServerTransID, ACS fields) ride in AdditionalData.
	IssuerURL *string
	MD        *string
	PaReq     *string

	// AdditionalData is a serialized ordered string-to-string mapping.
	AdditionalData string

	CreatedAt time.Time
}
