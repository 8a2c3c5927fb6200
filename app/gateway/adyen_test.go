package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tgshanahan/killbill-adyen-plugin/app/pspdata"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

func TestAdyenClientAuthorize(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/authorise" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Fatalf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultCode":"IdentifyShopper","pspReference":"psp-1","additionalData":{"threeds2.threeDS2Token":"tok"}}`))
	}))
	defer server.Close()

	client := NewAdyenClient(AdyenConfig{
		APIKey:          "test-key",
		MerchantAccount: "TestMerchant",
		PaymentURL:      server.URL,
	})

	result, err := client.Authorize(context.Background(), &AuthorizeRequest{
		AccountID:              "acct-1",
		TransactionExternalKey: "ext-1",
		AmountCents:            1000,
		Currency:               "EUR",
	})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if result.ResultCode != "IdentifyShopper" || result.PSPReference != "psp-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.AdditionalData["threeds2.threeDS2Token"] != "tok" {
		t.Fatalf("expected additional data to pass through, got %v", result.AdditionalData)
	}

	if captured["merchantAccount"] != "TestMerchant" {
		t.Fatalf("expected merchant account in payload, got %v", captured["merchantAccount"])
	}
	amount, ok := captured["amount"].(map[string]interface{})
	if !ok || amount["currency"] != "EUR" {
		t.Fatalf("unexpected amount payload: %v", captured["amount"])
	}
}

func TestAdyenClientAuthorizeSendsCompletionFields(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"resultCode":"Authorised","pspReference":"psp-2"}`))
	}))
	defer server.Close()

	client := NewAdyenClient(AdyenConfig{APIKey: "k", PaymentURL: server.URL})

	props := pspdata.New()
	props.Set(pspdata.ThreeDS2TokenKey, "token-abc")
	props.Set(pspdata.ThreeDSCompIndKey, "N")

	_, err := client.Authorize(context.Background(), &AuthorizeRequest{Properties: props})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}

	if captured["threeDS2Token"] != "token-abc" {
		t.Fatalf("expected threeDS2Token in payload, got %v", captured["threeDS2Token"])
	}
	result, ok := captured["threeDS2Result"].(map[string]interface{})
	if !ok || result["threeDSCompInd"] != "N" {
		t.Fatalf("expected completion indicator, got %v", captured["threeDS2Result"])
	}
}

func TestAdyenClientAuthorizeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errorCode":"901"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewAdyenClient(AdyenConfig{APIKey: "k", PaymentURL: server.URL})
	if _, err := client.Authorize(context.Background(), &AuthorizeRequest{}); err == nil {
		t.Fatal("expected error for http 401")
	}
}

func TestAdyenClientModify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/refund" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload["originalReference"] != "psp-1" {
			t.Fatalf("expected original reference, got %v", payload["originalReference"])
		}
		_, _ = w.Write([]byte(`{"response":"[refund-received]","pspReference":"psp-3"}`))
	}))
	defer server.Close()

	client := NewAdyenClient(AdyenConfig{APIKey: "k", PaymentURL: server.URL})

	result, err := client.Modify(context.Background(), &ModificationRequest{
		TransactionType:      types.TransactionTypeRefund,
		OriginalPSPReference: "psp-1",
		AmountCents:          500,
		Currency:             "EUR",
	})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if result.Response != "[refund-received]" || result.PSPReference != "psp-3" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestAdyenClientModifyUnsupportedType(t *testing.T) {
	client := NewAdyenClient(AdyenConfig{APIKey: "k", PaymentURL: "http://localhost"})
	if _, err := client.Modify(context.Background(), &ModificationRequest{TransactionType: types.TransactionTypeAuthorize}); err == nil {
		t.Fatal("expected error for unsupported modification type")
	}
}
