package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) AddNotification(ctx context.Context, row *entity.NotificationRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO adyen_notifications (
			kb_account_id, kb_payment_id, kb_payment_transaction_id, kb_tenant_id,
			transaction_type, amount_cents, currency,
			event_code, success, psp_reference, original_reference, merchant_reference, reason,
			additional_data, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		nullableStringValue(row.AccountID),
		nullableStringValue(row.PaymentID),
		nullableStringValue(row.PaymentTransactionID),
		nullableStringValue(row.TenantID),
		nullableStringValue(row.TransactionType),
		nullableInt64Value(row.AmountCents),
		nullableStringValue(row.Currency),
		row.EventCode,
		row.Success,
		nullableStringValue(row.PSPReference),
		nullableStringValue(row.OriginalReference),
		nullableStringValue(row.MerchantReference),
		nullableStringValue(row.Reason),
		row.AdditionalData,
		row.CreatedAt,
	)
	return err
}

// GetNotificationsForPayment returns events oldest first.
func (r *NotificationRepository) GetNotificationsForPayment(ctx context.Context, paymentID, tenantID string) ([]*entity.NotificationRow, error) {
	query := `
		SELECT record_id, kb_account_id, kb_payment_id, kb_payment_transaction_id, kb_tenant_id,
			transaction_type, amount_cents, currency,
			event_code, success, psp_reference, original_reference, merchant_reference, reason,
			additional_data, created_at
		FROM adyen_notifications
		WHERE kb_payment_id = ? AND kb_tenant_id = ?
		ORDER BY record_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, paymentID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.NotificationRow, 0)
	for rows.Next() {
		item, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanNotification(rows *sql.Rows) (*entity.NotificationRow, error) {
	var (
		item              entity.NotificationRow
		accountID         sql.NullString
		paymentID         sql.NullString
		paymentTxID       sql.NullString
		tenantID          sql.NullString
		txType            sql.NullString
		amountCents       sql.NullInt64
		currency          sql.NullString
		pspReference      sql.NullString
		originalReference sql.NullString
		merchantReference sql.NullString
		reason            sql.NullString
	)

	err := rows.Scan(
		&item.RecordID,
		&accountID,
		&paymentID,
		&paymentTxID,
		&tenantID,
		&txType,
		&amountCents,
		&currency,
		&item.EventCode,
		&item.Success,
		&pspReference,
		&originalReference,
		&merchantReference,
		&reason,
		&item.AdditionalData,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.AccountID = stringPtrFromNull(accountID)
	item.PaymentID = stringPtrFromNull(paymentID)
	item.PaymentTransactionID = stringPtrFromNull(paymentTxID)
	item.TenantID = stringPtrFromNull(tenantID)
	item.TransactionType = stringPtrFromNull(txType)
	item.AmountCents = int64PtrFromNull(amountCents)
	item.Currency = stringPtrFromNull(currency)
	item.PSPReference = stringPtrFromNull(pspReference)
	item.OriginalReference = stringPtrFromNull(originalReference)
	item.MerchantReference = stringPtrFromNull(merchantReference)
	item.Reason = stringPtrFromNull(reason)

	return &item, nil
}
