package types

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

// AuthorizeTransactionRequest is the host-initiated authorization call: one
// new transaction attempt against a stored payment method. Properties carry
// 3-D Secure continuation fields on the second leg of a challenge flow.
type AuthorizeTransactionRequest struct {
	PaymentID string
	TenantID  string

	AccountID              string            `json:"account_id"`
	PaymentMethodID        string            `json:"payment_method_id"`
	PaymentTransactionID   string            `json:"payment_transaction_id"`
	TransactionExternalKey string            `json:"transaction_external_key"`
	AmountCents            int64             `json:"amount_cents"`
	Currency               string            `json:"currency"`
	Properties             map[string]string `json:"properties"`
}

func NewAuthorizeTransactionRequestFromContext(ctx echo.Context) (*AuthorizeTransactionRequest, error) {
	req := &AuthorizeTransactionRequest{}
	if err := json.NewDecoder(ctx.Request().Body).Decode(req); err != nil {
		return nil, err
	}
	req.PaymentID = strings.TrimSpace(ctx.Param("paymentId"))
	req.TenantID = strings.TrimSpace(ctx.Request().Header.Get(TenantIDHeader))
	return req, nil
}

func (r *AuthorizeTransactionRequest) Validate() error {
	if r.PaymentID == "" {
		return errors.New("payment id is required")
	}
	if r.TenantID == "" {
		return errors.New("tenant id is required")
	}
	if r.AccountID == "" {
		return errors.New("account_id is required")
	}
	if r.PaymentMethodID == "" {
		return errors.New("payment_method_id is required")
	}
	if r.PaymentTransactionID == "" {
		return errors.New("payment_transaction_id is required")
	}
	if r.AmountCents <= 0 {
		return errors.New("amount_cents must be positive")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}
