package types

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

// RegisterPaymentMethodRequest stores a payment method for later
// authorizations. The card number never arrives here, only the gateway's
// recurring token and the display fields.
type RegisterPaymentMethodRequest struct {
	TenantID string

	AccountID       string            `json:"account_id"`
	PaymentMethodID string            `json:"payment_method_id"`
	Token           string            `json:"token"`
	CCType          string            `json:"cc_type"`
	CCLast4         string            `json:"cc_last4"`
	CCExpMonth      int32             `json:"cc_exp_month"`
	CCExpYear       int32             `json:"cc_exp_year"`
	IsDefault       bool              `json:"is_default"`
	Properties      map[string]string `json:"properties"`
}

func NewRegisterPaymentMethodRequestFromContext(ctx echo.Context) (*RegisterPaymentMethodRequest, error) {
	req := &RegisterPaymentMethodRequest{}
	if err := json.NewDecoder(ctx.Request().Body).Decode(req); err != nil {
		return nil, err
	}
	req.TenantID = strings.TrimSpace(ctx.Request().Header.Get(TenantIDHeader))
	return req, nil
}

func (r *RegisterPaymentMethodRequest) Validate() error {
	if r.TenantID == "" {
		return errors.New("tenant id is required")
	}
	if r.AccountID == "" {
		return errors.New("account_id is required")
	}
	if r.PaymentMethodID == "" {
		return errors.New("payment_method_id is required")
	}
	return nil
}

// DeletePaymentMethodRequest tombstones a stored payment method. The row
// survives for history; authorizations against it stop.
type DeletePaymentMethodRequest struct {
	PaymentMethodID string
	TenantID        string
}

func NewDeletePaymentMethodRequestFromContext(ctx echo.Context) (*DeletePaymentMethodRequest, error) {
	return &DeletePaymentMethodRequest{
		PaymentMethodID: strings.TrimSpace(ctx.Param("paymentMethodId")),
		TenantID:        strings.TrimSpace(ctx.Request().Header.Get(TenantIDHeader)),
	}, nil
}

func (r *DeletePaymentMethodRequest) Validate() error {
	if r.PaymentMethodID == "" {
		return errors.New("payment method id is required")
	}
	if r.TenantID == "" {
		return errors.New("tenant id is required")
	}
	return nil
}
