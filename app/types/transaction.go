package types

// TransactionType mirrors the host billing system's transaction types, stored
// in canonical string form on every ledger row.
type TransactionType string

const (
	TransactionTypeAuthorize TransactionType = "AUTHORIZE"
	TransactionTypeCapture   TransactionType = "CAPTURE"
	TransactionTypeRefund    TransactionType = "REFUND"
	TransactionTypeVoid      TransactionType = "VOID"
	TransactionTypeCredit    TransactionType = "CREDIT"
	TransactionTypePurchase  TransactionType = "PURCHASE"
)
