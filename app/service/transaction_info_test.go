package service

import (
	"context"
	"testing"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
	"github.com/tgshanahan/killbill-adyen-plugin/config"
)

type fakeHistoryLedger struct {
	rows []*entity.ResponseRow
}

func (l *fakeHistoryLedger) GetResponsesForPayment(_ context.Context, _, _ string) ([]*entity.ResponseRow, error) {
	return l.rows, nil
}

func historyRow(transactionID string, txType types.TransactionType, result types.PSPResult, createdAt time.Time) *entity.ResponseRow {
	classified := string(result)
	return &entity.ResponseRow{
		PaymentTransactionID: transactionID,
		TransactionType:      txType,
		PSPResult:            &classified,
		CreatedAt:            createdAt,
	}
}

func TestTransactionsForPaymentProjectsStatuses(t *testing.T) {
	now := time.Now().UTC()
	ledger := &fakeHistoryLedger{rows: []*entity.ResponseRow{
		historyRow("tx-1", types.TransactionTypeAuthorize, types.PSPResultAuthorized, now.Add(-time.Hour)),
		historyRow("tx-2", types.TransactionTypeCapture, types.PSPResultOtherPending, now),
	}}
	svc := NewTransactionInfoService(ledger, config.ReconciliationConfig{Pending3DSExpiration: 3 * time.Hour})

	resp, err := svc.TransactionsForPayment(context.Background(), &types.TransactionHistoryRequest{
		PaymentID: "pay-1",
		TenantID:  "tenant-1",
	})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(resp.Transactions))
	}
	if resp.Transactions[0].Status != types.TransactionStatusProcessed {
		t.Fatalf("expected processed, got %s", resp.Transactions[0].Status)
	}
	if resp.Transactions[1].Status != types.TransactionStatusPending {
		t.Fatalf("expected pending, got %s", resp.Transactions[1].Status)
	}
}

func TestTransactionsForPaymentExpiredPendingSurfacesCanceled(t *testing.T) {
	now := time.Now().UTC()
	ledger := &fakeHistoryLedger{rows: []*entity.ResponseRow{
		historyRow("tx-1", types.TransactionTypeAuthorize, types.PSPResultPendingChallenge, now.Add(-4*time.Hour)),
	}}
	svc := NewTransactionInfoService(ledger, config.ReconciliationConfig{Pending3DSExpiration: 3 * time.Hour})

	resp, err := svc.TransactionsForPayment(context.Background(), &types.TransactionHistoryRequest{
		PaymentID: "pay-1",
		TenantID:  "tenant-1",
	})
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if resp.Transactions[0].Status != types.TransactionStatusCanceled {
		t.Fatalf("expected canceled, got %s", resp.Transactions[0].Status)
	}
}

func TestTransactionsForPaymentNotFound(t *testing.T) {
	svc := NewTransactionInfoService(&fakeHistoryLedger{}, config.ReconciliationConfig{})
	_, err := svc.TransactionsForPayment(context.Background(), &types.TransactionHistoryRequest{
		PaymentID: "missing",
		TenantID:  "tenant-1",
	})
	if err != ErrPaymentNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransactionsForPaymentValidatesRequest(t *testing.T) {
	svc := NewTransactionInfoService(&fakeHistoryLedger{}, config.ReconciliationConfig{})
	_, err := svc.TransactionsForPayment(context.Background(), &types.TransactionHistoryRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
}
