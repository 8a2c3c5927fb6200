package gateway

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/pspdata"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

type fakeLedger struct {
	rows []*entity.ResponseRow
}

func (f *fakeLedger) AddResponse(_ context.Context, row *entity.ResponseRow) (*entity.ResponseRow, error) {
	row.RecordID = uint64(len(f.rows) + 1)
	f.rows = append(f.rows, row)
	return row, nil
}

func (f *fakeLedger) AddModificationResponse(_ context.Context, row *entity.ResponseRow) (*entity.ResponseRow, error) {
	return f.AddResponse(nil, row)
}

type fakeClient struct {
	authorizeResult *AuthorizeResult
	modifyResult    *ModificationResult
	err             error
}

func (f *fakeClient) Authorize(_ context.Context, _ *AuthorizeRequest) (*AuthorizeResult, error) {
	return f.authorizeResult, f.err
}

func (f *fakeClient) Modify(_ context.Context, _ *ModificationRequest) (*ModificationResult, error) {
	return f.modifyResult, f.err
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestFacadeAuthorizePersistsClassifiedRow(t *testing.T) {
	ledger := &fakeLedger{}
	facade := NewFacade(&fakeClient{
		authorizeResult: &AuthorizeResult{
			ResultCode:   "IdentifyShopper",
			PSPReference: "psp-1",
			AdditionalData: map[string]string{
				"threeds2.threeDS2Token": "tok",
			},
		},
	}, ledger, discardLogger())

	outcome, err := facade.Authorize(context.Background(), &AuthorizeRequest{
		AccountID:            "acct-1",
		PaymentID:            "pay-1",
		PaymentTransactionID: "tx-1",
		TenantID:             "tenant-1",
		AmountCents:          1000,
		Currency:             "EUR",
	})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if outcome.Result != types.PSPResultPendingIdentify {
		t.Fatalf("expected pending identify, got %s", outcome.Result)
	}
	if len(ledger.rows) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(ledger.rows))
	}
	row := ledger.rows[0]
	if row.TransactionType != types.TransactionTypeAuthorize {
		t.Fatalf("unexpected transaction type %s", row.TransactionType)
	}
	if row.PSPReference == nil || *row.PSPReference != "psp-1" {
		t.Fatalf("expected psp reference on row")
	}

	data, err := pspdata.Parse(row.AdditionalData)
	if err != nil {
		t.Fatalf("parse additional data: %v", err)
	}
	if v, _ := data.Get("threeds2.threeDS2Token"); v != "tok" {
		t.Fatalf("expected token in additional data, got %q", v)
	}
}

func TestFacadeAuthorizeWireErrorRecordsMarkers(t *testing.T) {
	ledger := &fakeLedger{}
	facade := NewFacade(&fakeClient{err: errors.New("connection refused")}, ledger, discardLogger())

	outcome, err := facade.Authorize(context.Background(), &AuthorizeRequest{
		PaymentTransactionID: "tx-1",
		TenantID:             "tenant-1",
	})
	if err != nil {
		t.Fatalf("wire failure must not surface as error, got %v", err)
	}
	if outcome.Result != types.PSPResultError {
		t.Fatalf("expected error result, got %s", outcome.Result)
	}

	data, err := pspdata.Parse(ledger.rows[0].AdditionalData)
	if err != nil {
		t.Fatalf("parse additional data: %v", err)
	}
	if _, ok := data.Get(pspdata.CallErrorStatusKey); !ok {
		t.Fatal("expected call error status marker")
	}
	if msg, _ := data.Get(pspdata.ExceptionMessageKey); msg != "connection refused" {
		t.Fatalf("expected exception message, got %q", msg)
	}
	if ledger.rows[0].PSPReference != nil {
		t.Fatal("failed call must not record a psp reference")
	}
}

func TestFacadeModifyPersistsRow(t *testing.T) {
	ledger := &fakeLedger{}
	facade := NewFacade(&fakeClient{
		modifyResult: &ModificationResult{Response: "[refund-received]", PSPReference: "psp-9"},
	}, ledger, discardLogger())

	outcome, err := facade.Modify(context.Background(), &ModificationRequest{
		PaymentTransactionID: "tx-2",
		TenantID:             "tenant-1",
		TransactionType:      types.TransactionTypeRefund,
		OriginalPSPReference: "psp-1",
		AmountCents:          500,
		Currency:             "EUR",
	})
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if outcome.Result != types.PSPResultOtherPending {
		t.Fatalf("expected other pending, got %s", outcome.Result)
	}
	if ledger.rows[0].TransactionType != types.TransactionTypeRefund {
		t.Fatalf("unexpected transaction type %s", ledger.rows[0].TransactionType)
	}
}
