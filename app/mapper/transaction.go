package mapper

import (
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

// TransactionInfoFromRow projects a ledger row into its visible transaction
// view, deriving the status from the row's classified result at read time.
func TransactionInfoFromRow(row *entity.ResponseRow, pendingExpiration time.Duration, now time.Time) *types.TransactionInfo {
	result := types.PSPResultOtherPending
	if row.PSPResult != nil {
		result = types.PSPResult(*row.PSPResult)
	}

	info := &types.TransactionInfo{
		PaymentTransactionID: row.PaymentTransactionID,
		TransactionType:      row.TransactionType,
		Status: types.ProjectTransactionStatus(
			result,
			row.PSPReference != nil,
			row.TransactionType,
			row.CreatedAt,
			pendingExpiration,
			now,
		),
		CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339),
	}

	if row.AmountCents != nil {
		info.AmountCents = *row.AmountCents
	}
	if row.Currency != nil {
		info.Currency = *row.Currency
	}
	if row.ResultCode != nil {
		info.GatewayResultCode = *row.ResultCode
	}
	if row.PSPReference != nil {
		info.GatewayReference = *row.PSPReference
	}
	if row.RefusalReason != nil {
		info.GatewayError = *row.RefusalReason
	}

	return info
}
