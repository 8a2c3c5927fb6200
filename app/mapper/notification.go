package mapper

import (
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

// NotificationInfoFromRow projects a recorded gateway event into its visible
// view. Identity fields stay empty for events that never matched a local row.
func NotificationInfoFromRow(row *entity.NotificationRow) *types.NotificationInfo {
	info := &types.NotificationInfo{
		EventCode: row.EventCode,
		Success:   row.Success,
		CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339),
	}

	if row.PaymentTransactionID != nil {
		info.PaymentTransactionID = *row.PaymentTransactionID
	}
	if row.TransactionType != nil {
		info.TransactionType = *row.TransactionType
	}
	if row.PSPReference != nil {
		info.PSPReference = *row.PSPReference
	}
	if row.AmountCents != nil {
		info.AmountCents = *row.AmountCents
	}
	if row.Currency != nil {
		info.Currency = *row.Currency
	}
	if row.Reason != nil {
		info.Reason = *row.Reason
	}

	return info
}
