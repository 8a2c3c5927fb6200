package types

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the uniform HTTP error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TransactionInfo is one visible transaction attempt for a payment.
type TransactionInfo struct {
	PaymentTransactionID string            `json:"payment_transaction_id"`
	TransactionType      TransactionType   `json:"transaction_type"`
	AmountCents          int64             `json:"amount_cents,omitempty"`
	Currency             string            `json:"currency,omitempty"`
	Status               TransactionStatus `json:"status"`
	GatewayResultCode    string            `json:"gateway_result_code,omitempty"`
	GatewayReference     string            `json:"gateway_reference,omitempty"`
	GatewayError         string            `json:"gateway_error,omitempty"`
	CreatedAt            string            `json:"created_at"`
}

// TransactionHistoryResponse lists the visible transaction history of a
// payment, oldest first.
type TransactionHistoryResponse struct {
	PaymentID    string             `json:"payment_id"`
	Transactions []*TransactionInfo `json:"transactions"`
}

// NotificationInfo is one recorded gateway event.
type NotificationInfo struct {
	EventCode            string `json:"event_code"`
	Success              bool   `json:"success"`
	PaymentTransactionID string `json:"payment_transaction_id,omitempty"`
	TransactionType      string `json:"transaction_type,omitempty"`
	PSPReference         string `json:"psp_reference,omitempty"`
	AmountCents          int64  `json:"amount_cents,omitempty"`
	Currency             string `json:"currency,omitempty"`
	Reason               string `json:"reason,omitempty"`
	CreatedAt            string `json:"created_at"`
}

// NotificationHistoryResponse lists the gateway events recorded for a
// payment, oldest first.
type NotificationHistoryResponse struct {
	PaymentID     string              `json:"payment_id"`
	Notifications []*NotificationInfo `json:"notifications"`
}
