package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

type HostTransaction struct {
	PaymentTransactionID string                `json:"transactionId"`
	ExternalKey          string                `json:"transactionExternalKey"`
	TransactionType      types.TransactionType `json:"transactionType"`
	AmountCents          int64                 `json:"amountCents"`
	Currency             string                `json:"currency"`
	Status               string                `json:"status"`
}

type HostPayment struct {
	PaymentID    string            `json:"paymentId"`
	AccountID    string            `json:"accountId"`
	ExternalKey  string            `json:"paymentExternalKey"`
	Transactions []HostTransaction `json:"transactions"`
}

func (p *HostPayment) TransactionByID(paymentTransactionID string) *HostTransaction {
	for i := range p.Transactions {
		if p.Transactions[i].PaymentTransactionID == paymentTransactionID {
			return &p.Transactions[i]
		}
	}
	return nil
}

type TransactionStateUpdate struct {
	PaymentID            string
	PaymentTransactionID string
	Status               types.TransactionStatus
	Message              string
}

// HostAPI is the billing host boundary. Sessions returned by Login scope the
// subsequent calls; a session must always be released via Logout.
type HostAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, session string) error
	GetPayment(ctx context.Context, session, tenantID, paymentID string) (*HostPayment, error)
	UpdateTransactionState(ctx context.Context, session, tenantID string, update *TransactionStateUpdate) error
}

// withImpersonation runs fn inside a logged-in host session and releases the
// session on every exit path. A logout failure never masks fn's result.
func withImpersonation(ctx context.Context, api HostAPI, username, password string, fn func(session string) error) error {
	session, err := api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("host login: %w", err)
	}
	defer func() {
		_ = api.Logout(ctx, session)
	}()
	return fn(session)
}

type HostConfig struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
}

// HostClient implements HostAPI over the host's JSON HTTP API.
type HostClient struct {
	cfg    HostConfig
	client *http.Client
}

func NewHostClient(cfg HostConfig) *HostClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &HostClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HostClient) Login(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{"username": username, "password": password}
	body, err := c.do(ctx, http.MethodPost, "/sessions", "", "", payload)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Session string `json:"session"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if strings.TrimSpace(parsed.Session) == "" {
		return "", fmt.Errorf("host login returned no session")
	}
	return parsed.Session, nil
}

func (c *HostClient) Logout(ctx context.Context, session string) error {
	_, err := c.do(ctx, http.MethodDelete, "/sessions/current", session, "", nil)
	return err
}

func (c *HostClient) GetPayment(ctx context.Context, session, tenantID, paymentID string) (*HostPayment, error) {
	body, err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), session, tenantID, nil)
	if err != nil {
		return nil, err
	}

	payment := &HostPayment{}
	if err := json.Unmarshal(body, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (c *HostClient) UpdateTransactionState(ctx context.Context, session, tenantID string, update *TransactionStateUpdate) error {
	payload := map[string]string{
		"transactionId": update.PaymentTransactionID,
		"status":        string(update.Status),
	}
	if update.Message != "" {
		payload["message"] = update.Message
	}

	path := "/payments/" + url.PathEscape(update.PaymentID) + "/transactions/" + url.PathEscape(update.PaymentTransactionID) + "/state"
	_, err := c.do(ctx, http.MethodPut, path, session, tenantID, payload)
	return err
}

func (c *HostClient) do(ctx context.Context, method, path, session, tenantID string, payload interface{}) ([]byte, error) {
	if strings.TrimSpace(c.cfg.BaseURL) == "" {
		return nil, fmt.Errorf("host base url is not configured")
	}

	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}
	if session != "" {
		req.Header.Set("X-Session-Id", session)
	}
	if tenantID != "" {
		req.Header.Set(types.TenantIDHeader, tenantID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("host call failed: method=%s path=%s status=%d body=%s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}
