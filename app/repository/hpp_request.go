package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
)

type HPPRequestRepository struct {
	db DBTX
}

func NewHPPRequestRepository(db DBTX) *HPPRequestRepository {
	return &HPPRequestRepository{db: db}
}

func (r *HPPRequestRepository) AddHPPRequest(ctx context.Context, row *entity.HPPRequestRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO adyen_hpp_requests (
			kb_account_id, kb_payment_id, kb_payment_transaction_id, kb_tenant_id,
			transaction_external_key, additional_data, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		row.AccountID,
		nullableStringValue(row.PaymentID),
		nullableStringValue(row.PaymentTransactionID),
		row.TenantID,
		row.TransactionExternalKey,
		row.AdditionalData,
		row.CreatedAt,
	)
	return err
}

// GetHPPRequestByExternalKey returns the latest redirect recorded for a
// transaction external key, or nil. The external key doubles as the merchant
// reference sent to the gateway.
func (r *HPPRequestRepository) GetHPPRequestByExternalKey(ctx context.Context, externalKey, tenantID string) (*entity.HPPRequestRow, error) {
	query := `
		SELECT record_id, kb_account_id, kb_payment_id, kb_payment_transaction_id, kb_tenant_id,
			transaction_external_key, additional_data, created_at
		FROM adyen_hpp_requests
		WHERE transaction_external_key = ? AND kb_tenant_id = ?
		ORDER BY record_id DESC
		LIMIT 1
	`
	var (
		item        entity.HPPRequestRow
		paymentID   sql.NullString
		paymentTxID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, externalKey, tenantID).Scan(
		&item.RecordID,
		&item.AccountID,
		&paymentID,
		&paymentTxID,
		&item.TenantID,
		&item.TransactionExternalKey,
		&item.AdditionalData,
		&item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	item.PaymentID = stringPtrFromNull(paymentID)
	item.PaymentTransactionID = stringPtrFromNull(paymentTxID)
	return &item, nil
}
