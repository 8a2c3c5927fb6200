package types

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestNewNotificationRequestFromContext(t *testing.T) {
	e := echo.New()
	body := `{"live":"false","notificationItems":[{"NotificationRequestItem":{"eventCode":"AUTHORISATION","success":"true","pspReference":"psp-1","merchantReference":"tx-key-1","amount":{"value":1000,"currency":"EUR"},"additionalData":{"authCode":"1234"}}}]}`
	req := httptest.NewRequest("POST", "/notifications", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(TenantIDHeader, "tenant-1")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	parsed, err := NewNotificationRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.TenantID != "tenant-1" {
		t.Fatalf("expected tenant from header, got %q", parsed.TenantID)
	}
	if len(parsed.Items) != 1 {
		t.Fatalf("expected one notification item, got %d", len(parsed.Items))
	}
	item := parsed.Items[0]
	if item.EventCode != "AUTHORISATION" || !item.IsSuccess() {
		t.Fatalf("unexpected item parse: %+v", item)
	}
	if item.Amount.Value != 1000 || item.Amount.Currency != "EUR" {
		t.Fatalf("unexpected amount parse: %+v", item.Amount)
	}
	if item.AdditionalData["authCode"] != "1234" {
		t.Fatalf("unexpected additional data: %+v", item.AdditionalData)
	}
	if err := parsed.Validate(); err != nil {
		t.Fatalf("expected valid notification request, got %v", err)
	}
}

func TestNotificationRequestValidate(t *testing.T) {
	req := &NotificationRequest{}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for empty notification batch")
	}

	req = &NotificationRequest{Items: []NotificationRequestItem{{Success: "true"}}}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing event code")
	}
}

func TestNewTransactionHistoryRequestFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("GET", "/payments/pay-1/transactions?tenant_id=tenant-q", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("paymentId")
	ctx.SetParamValues("pay-1")

	parsed, err := NewTransactionHistoryRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed.PaymentID != "pay-1" {
		t.Fatalf("unexpected payment id: %q", parsed.PaymentID)
	}
	if parsed.TenantID != "tenant-q" {
		t.Fatalf("expected tenant from query fallback, got %q", parsed.TenantID)
	}
	if err := parsed.Validate(); err != nil {
		t.Fatalf("expected valid history request, got %v", err)
	}
}

func TestTransactionHistoryRequestValidate(t *testing.T) {
	req := &TransactionHistoryRequest{TenantID: "tenant-1"}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing payment id")
	}
	req = &TransactionHistoryRequest{PaymentID: "pay-1"}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing tenant id")
	}
}
