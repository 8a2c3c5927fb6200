package types

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

const TenantIDHeader = "X-Tenant-Id"

// NotificationAmount is the gateway's minor-unit amount representation.
type NotificationAmount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

// NotificationRequestItem is one event inside a gateway notification batch.
// The success flag arrives as the strings "true"/"false".
type NotificationRequestItem struct {
	EventCode           string             `json:"eventCode"`
	Success             string             `json:"success"`
	PSPReference        string             `json:"pspReference"`
	OriginalReference   string             `json:"originalReference"`
	MerchantReference   string             `json:"merchantReference"`
	MerchantAccountCode string             `json:"merchantAccountCode"`
	Reason              string             `json:"reason"`
	EventDate           string             `json:"eventDate"`
	Amount              NotificationAmount `json:"amount"`
	AdditionalData      map[string]string  `json:"additionalData"`
}

func (i *NotificationRequestItem) IsSuccess() bool {
	return strings.EqualFold(strings.TrimSpace(i.Success), "true")
}

type notificationItemEnvelope struct {
	NotificationRequestItem NotificationRequestItem `json:"NotificationRequestItem"`
}

// NotificationRequest is the gateway's server-to-server notification batch.
type NotificationRequest struct {
	TenantID string
	Live     string
	Items    []NotificationRequestItem
}

func NewNotificationRequestFromContext(ctx echo.Context) (*NotificationRequest, error) {
	var body struct {
		Live              string                     `json:"live"`
		NotificationItems []notificationItemEnvelope `json:"notificationItems"`
	}
	if err := json.NewDecoder(ctx.Request().Body).Decode(&body); err != nil {
		return nil, err
	}

	req := &NotificationRequest{
		TenantID: strings.TrimSpace(ctx.Request().Header.Get(TenantIDHeader)),
		Live:     strings.TrimSpace(body.Live),
	}
	for _, envelope := range body.NotificationItems {
		req.Items = append(req.Items, envelope.NotificationRequestItem)
	}
	return req, nil
}

func (r *NotificationRequest) Validate() error {
	if len(r.Items) == 0 {
		return errors.New("notificationItems is required")
	}
	for _, item := range r.Items {
		if strings.TrimSpace(item.EventCode) == "" {
			return errors.New("eventCode is required")
		}
	}
	return nil
}

// TransactionHistoryRequest asks for the visible transaction history of a
// payment, one logical attempt per authorization.
type TransactionHistoryRequest struct {
	PaymentID string
	TenantID  string
}

func NewTransactionHistoryRequestFromContext(ctx echo.Context) (*TransactionHistoryRequest, error) {
	tenantID := strings.TrimSpace(ctx.Request().Header.Get(TenantIDHeader))
	if tenantID == "" {
		tenantID = strings.TrimSpace(ctx.QueryParam("tenant_id"))
	}
	return &TransactionHistoryRequest{
		PaymentID: strings.TrimSpace(ctx.Param("paymentId")),
		TenantID:  tenantID,
	}, nil
}

func (r *TransactionHistoryRequest) Validate() error {
	if r.PaymentID == "" {
		return errors.New("payment id is required")
	}
	if r.TenantID == "" {
		return errors.New("tenant id is required")
	}
	return nil
}
