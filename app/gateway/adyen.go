package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/pspdata"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

type AdyenConfig struct {
	APIKey          string
	MerchantAccount string
	PaymentURL      string
	HTTPTimeout     time.Duration
}

// AdyenClient talks to the classic Payment API. Authorization and 3-D Secure
// completion both go through the authorise endpoint; captures, refunds and
// cancels go through their own modification endpoints.
type AdyenClient struct {
	cfg    AdyenConfig
	client *http.Client
}

func NewAdyenClient(cfg AdyenConfig) *AdyenClient {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg.PaymentURL = strings.TrimRight(cfg.PaymentURL, "/")

	return &AdyenClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type adyenAmount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

type adyenAuthorisePayload struct {
	MerchantAccount string      `json:"merchantAccount"`
	Reference       string      `json:"reference"`
	Amount          adyenAmount `json:"amount"`

	SelectedRecurringDetailReference string `json:"selectedRecurringDetailReference,omitempty"`
	ShopperReference                 string `json:"shopperReference,omitempty"`

	MD         string `json:"md,omitempty"`
	PaResponse string `json:"paResponse,omitempty"`

	ThreeDS2Token  string            `json:"threeDS2Token,omitempty"`
	ThreeDS2Result map[string]string `json:"threeDS2Result,omitempty"`
	AdditionalData map[string]string `json:"additionalData,omitempty"`
}

type adyenAuthoriseResponse struct {
	ResultCode    string `json:"resultCode"`
	PSPReference  string `json:"pspReference"`
	AuthCode      string `json:"authCode"`
	RefusalReason string `json:"refusalReason"`

	IssuerURL string `json:"issuerUrl"`
	MD        string `json:"md"`
	PaRequest string `json:"paRequest"`

	AdditionalData map[string]string `json:"additionalData"`
}

func (c *AdyenClient) Authorize(ctx context.Context, req *AuthorizeRequest) (*AuthorizeResult, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("adyen api key is not configured")
	}
	if strings.TrimSpace(c.cfg.PaymentURL) == "" {
		return nil, errors.New("adyen payment url is not configured")
	}

	payload := adyenAuthorisePayload{
		MerchantAccount: c.cfg.MerchantAccount,
		Reference:       req.TransactionExternalKey,
		Amount: adyenAmount{
			Value:    req.AmountCents,
			Currency: req.Currency,
		},
		ShopperReference: req.AccountID,
	}

	if req.Properties != nil {
		if v, ok := req.Properties.Get(pspdata.MDKey); ok {
			payload.MD = v
		}
		if v, ok := req.Properties.Get(pspdata.PaResKey); ok {
			payload.PaResponse = v
		}
		if v, ok := req.Properties.Get(pspdata.ThreeDS2TokenKey); ok {
			payload.ThreeDS2Token = v
		}
		if v, ok := req.Properties.Get(pspdata.ThreeDSCompIndKey); ok {
			payload.ThreeDS2Result = map[string]string{"threeDSCompInd": v}
		}
	}

	body, err := c.post(ctx, c.cfg.PaymentURL+"/authorise", payload)
	if err != nil {
		return nil, err
	}

	var parsed adyenAuthoriseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	return &AuthorizeResult{
		ResultCode:     parsed.ResultCode,
		PSPReference:   parsed.PSPReference,
		AuthCode:       parsed.AuthCode,
		RefusalReason:  parsed.RefusalReason,
		IssuerURL:      parsed.IssuerURL,
		MD:             parsed.MD,
		PaReq:          parsed.PaRequest,
		AdditionalData: parsed.AdditionalData,
	}, nil
}

type adyenModificationPayload struct {
	MerchantAccount    string       `json:"merchantAccount"`
	OriginalReference  string       `json:"originalReference"`
	ModificationAmount *adyenAmount `json:"modificationAmount,omitempty"`
}

type adyenModificationResponse struct {
	Response       string            `json:"response"`
	PSPReference   string            `json:"pspReference"`
	AdditionalData map[string]string `json:"additionalData"`
}

func (c *AdyenClient) Modify(ctx context.Context, req *ModificationRequest) (*ModificationResult, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("adyen api key is not configured")
	}

	endpoint, needsAmount, err := modificationEndpoint(req.TransactionType)
	if err != nil {
		return nil, err
	}

	payload := adyenModificationPayload{
		MerchantAccount:   c.cfg.MerchantAccount,
		OriginalReference: req.OriginalPSPReference,
	}
	if needsAmount {
		payload.ModificationAmount = &adyenAmount{
			Value:    req.AmountCents,
			Currency: req.Currency,
		}
	}

	body, err := c.post(ctx, c.cfg.PaymentURL+endpoint, payload)
	if err != nil {
		return nil, err
	}

	var parsed adyenModificationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	return &ModificationResult{
		Response:       parsed.Response,
		PSPReference:   parsed.PSPReference,
		AdditionalData: parsed.AdditionalData,
	}, nil
}

func modificationEndpoint(txType types.TransactionType) (string, bool, error) {
	switch txType {
	case types.TransactionTypeCapture:
		return "/capture", true, nil
	case types.TransactionTypeRefund:
		return "/refund", true, nil
	case types.TransactionTypeVoid:
		return "/cancel", false, nil
	case types.TransactionTypeCredit:
		return "/refundWithData", true, nil
	default:
		return "", false, fmt.Errorf("unsupported modification type %s", txType)
	}
}

func (c *AdyenClient) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.cfg.APIKey)

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
		return nil, fmt.Errorf("adyen call failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return body, nil
}
