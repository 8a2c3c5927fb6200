package types

import "time"

// TransactionStatus is the externally visible status projected from the
// ledger's latest row for a transaction.
type TransactionStatus string

const (
	TransactionStatusProcessed TransactionStatus = "processed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusError     TransactionStatus = "error"
	TransactionStatusDeclined  TransactionStatus = "declined"
	TransactionStatusCanceled  TransactionStatus = "canceled"
)

// ProjectTransactionStatus derives the user-visible status from the classified
// outcome of the latest ledger row. A pending authorization older than the
// expiration window projects as canceled; this is a read-time rule only, the
// row itself is never rewritten.
func ProjectTransactionStatus(
	result PSPResult,
	hasPSPReference bool,
	transactionType TransactionType,
	createdAt time.Time,
	pendingExpiration time.Duration,
	now time.Time,
) TransactionStatus {
	switch result {
	case PSPResultAuthorized:
		return TransactionStatusProcessed
	case PSPResultRefused, PSPResultError:
		if hasPSPReference {
			return TransactionStatusDeclined
		}
		return TransactionStatusError
	default:
	}

	if transactionType == TransactionTypeAuthorize &&
		pendingExpiration > 0 &&
		now.Sub(createdAt) > pendingExpiration {
		return TransactionStatusCanceled
	}
	return TransactionStatusPending
}
