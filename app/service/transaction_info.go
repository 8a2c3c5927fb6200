package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/mapper"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
	"github.com/tgshanahan/killbill-adyen-plugin/config"
)

type historyLedger interface {
	GetResponsesForPayment(ctx context.Context, paymentID, tenantID string) ([]*entity.ResponseRow, error)
}

// TransactionInfoService serves the visible transaction history of a payment:
// the pruned ledger rows, each with its status projected at read time.
type TransactionInfoService struct {
	ledger historyLedger
	cfg    config.ReconciliationConfig
	now    func() time.Time
}

func NewTransactionInfoService(ledger historyLedger, cfg config.ReconciliationConfig) *TransactionInfoService {
	return &TransactionInfoService{
		ledger: ledger,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *TransactionInfoService) TransactionsForPayment(ctx context.Context, req *types.TransactionHistoryRequest) (*types.TransactionHistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	rows, err := s.ledger.GetResponsesForPayment(ctx, req.PaymentID, req.TenantID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrPaymentNotFound
	}

	now := s.now()
	items := make([]*types.TransactionInfo, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapper.TransactionInfoFromRow(row, s.cfg.Pending3DSExpiration, now))
	}

	return &types.TransactionHistoryResponse{
		PaymentID:    req.PaymentID,
		Transactions: items,
	}, nil
}
