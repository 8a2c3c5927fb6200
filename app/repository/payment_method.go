package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
)

type PaymentMethodRepository struct {
	db DBTX
}

func NewPaymentMethodRepository(db DBTX) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

func (r *PaymentMethodRepository) AddPaymentMethod(ctx context.Context, row *entity.PaymentMethodRow) error {
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = now
	}

	query := `
		INSERT INTO adyen_payment_methods (
			kb_account_id, kb_payment_method_id, kb_tenant_id,
			token, cc_type, cc_last4, cc_exp_month, cc_exp_year,
			is_default, is_deleted, additional_data, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		row.AccountID,
		row.PaymentMethodID,
		row.TenantID,
		nullableStringValue(row.Token),
		nullableStringValue(row.CCType),
		nullableStringValue(row.CCLast4),
		nullableInt32Value(row.CCExpMonth),
		nullableInt32Value(row.CCExpYear),
		row.IsDefault,
		row.IsDeleted,
		row.AdditionalData,
		row.CreatedAt,
		row.UpdatedAt,
	)
	return err
}

// GetPaymentMethod returns the method by its host identifier, deleted rows
// included so callers can surface tombstones.
func (r *PaymentMethodRepository) GetPaymentMethod(ctx context.Context, paymentMethodID, tenantID string) (*entity.PaymentMethodRow, error) {
	query := `
		SELECT record_id, kb_account_id, kb_payment_method_id, kb_tenant_id,
			token, cc_type, cc_last4, cc_exp_month, cc_exp_year,
			is_default, is_deleted, additional_data, created_at, updated_at
		FROM adyen_payment_methods
		WHERE kb_payment_method_id = ? AND kb_tenant_id = ?
		ORDER BY record_id DESC
		LIMIT 1
	`

	var (
		item       entity.PaymentMethodRow
		token      sql.NullString
		ccType     sql.NullString
		ccLast4    sql.NullString
		ccExpMonth sql.NullInt32
		ccExpYear  sql.NullInt32
	)
	err := r.db.QueryRowContext(ctx, query, paymentMethodID, tenantID).Scan(
		&item.RecordID,
		&item.AccountID,
		&item.PaymentMethodID,
		&item.TenantID,
		&token,
		&ccType,
		&ccLast4,
		&ccExpMonth,
		&ccExpYear,
		&item.IsDefault,
		&item.IsDeleted,
		&item.AdditionalData,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	item.Token = stringPtrFromNull(token)
	item.CCType = stringPtrFromNull(ccType)
	item.CCLast4 = stringPtrFromNull(ccLast4)
	item.CCExpMonth = int32PtrFromNull(ccExpMonth)
	item.CCExpYear = int32PtrFromNull(ccExpYear)
	return &item, nil
}

func (r *PaymentMethodRepository) MarkDeleted(ctx context.Context, paymentMethodID, tenantID string) error {
	query := `
		UPDATE adyen_payment_methods
		SET is_deleted = TRUE, updated_at = ?
		WHERE kb_payment_method_id = ? AND kb_tenant_id = ?
	`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), paymentMethodID, tenantID)
	return err
}
