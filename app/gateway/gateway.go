package gateway

import (
	"context"

	"github.com/tgshanahan/killbill-adyen-plugin/app/pspdata"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

type AuthorizeRequest struct {
	AccountID            string
	PaymentID            string
	PaymentTransactionID string
	TenantID             string
	PaymentMethodID      string

	TransactionExternalKey string

	AmountCents int64
	Currency    string

	// Properties carries gateway pass-through fields such as 3-D Secure
	// tokens and completion indicators.
	Properties *pspdata.Data
}

type ModificationRequest struct {
	AccountID            string
	PaymentID            string
	PaymentTransactionID string
	TenantID             string

	TransactionType types.TransactionType

	OriginalPSPReference string

	AmountCents int64
	Currency    string
}

type AuthorizeResult struct {
	ResultCode    string
	PSPReference  string
	AuthCode      string
	RefusalReason string

	IssuerURL string
	MD        string
	PaReq     string

	AdditionalData map[string]string
}

type ModificationResult struct {
	Response     string
	PSPReference string

	AdditionalData map[string]string
}

// Client is the wire-level gateway. Implementations return an error only for
// transport failures; declined outcomes come back as results.
type Client interface {
	Authorize(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResult, error)
	Modify(ctx context.Context, req *ModificationRequest) (*ModificationResult, error)
}
