package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/pspdata"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

const responseColumns = `
	record_id, kb_account_id, kb_payment_id, kb_payment_transaction_id, kb_tenant_id,
	transaction_type, amount_cents, currency,
	psp_result, psp_reference, auth_code, result_code, refusal_reason, reference,
	issuer_url, md, pa_request, additional_data, created_at
`

// ResponseRepository is the response ledger: append-only rows for every
// gateway interaction, latest row authoritative per transaction.
type ResponseRepository struct {
	db DBTX
}

func NewResponseRepository(db DBTX) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// AddResponse inserts an authorization row and returns the latest row for the
// transaction, re-read from the store for canonical ids and timestamps.
func (r *ResponseRepository) AddResponse(ctx context.Context, row *entity.ResponseRow) (*entity.ResponseRow, error) {
	if err := r.insert(ctx, row); err != nil {
		return nil, err
	}
	return r.latestForTransaction(ctx, row.PaymentTransactionID, row.TenantID)
}

// AddModificationResponse inserts a capture/refund/void/credit row. The
// modification result shape carries no challenge or redirect fields.
func (r *ResponseRepository) AddModificationResponse(ctx context.Context, row *entity.ResponseRow) (*entity.ResponseRow, error) {
	row.AuthCode = nil
	row.ResultCode = nil
	row.RefusalReason = nil
	row.IssuerURL = nil
	row.MD = nil
	row.PaReq = nil
	return r.AddResponse(ctx, row)
}

// UpdateLatestResponse merges properties into the newest row for a payment
// transaction. Same-key entries overwrite, unrelated keys are preserved, the
// result code can optionally be reclassified, and a PSP reference supplied by
// the merge purges any previously recorded local call-error markers. Returns
// nil when no row exists.
func (r *ResponseRepository) UpdateLatestResponse(
	ctx context.Context,
	paymentTransactionID string,
	tenantID string,
	newResult *types.PSPResult,
	properties *pspdata.Data,
) (*entity.ResponseRow, error) {
	current, err := r.latestForTransaction(ctx, paymentTransactionID, tenantID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	mergedBlob, pspReference, err := mergeResponseData(current.AdditionalData, current.PSPReference, properties)
	if err != nil {
		return nil, err
	}

	if newResult != nil {
		result := string(*newResult)
		query := `
			UPDATE adyen_responses
			SET psp_reference = ?, additional_data = ?, psp_result = ?
			WHERE record_id = ?
		`
		if _, err := r.db.ExecContext(ctx, query, nullableStringValue(pspReference), mergedBlob, result, current.RecordID); err != nil {
			return nil, err
		}
	} else {
		query := `
			UPDATE adyen_responses
			SET psp_reference = ?, additional_data = ?
			WHERE record_id = ?
		`
		if _, err := r.db.ExecContext(ctx, query, nullableStringValue(pspReference), mergedBlob, current.RecordID); err != nil {
			return nil, err
		}
	}

	return r.latestForTransaction(ctx, paymentTransactionID, tenantID)
}

// mergeResponseData applies props onto the stored additional-data blob and
// decides the row's PSP reference. A merged-in reference supersedes the stored
// one, and a row that ends up holding a reference sheds its local call-error
// markers: the call demonstrably reached the gateway.
func mergeResponseData(currentBlob string, currentRef *string, props *pspdata.Data) (string, *string, error) {
	merged, err := pspdata.Parse(currentBlob)
	if err != nil {
		return "", nil, err
	}
	merged.Merge(props)

	pspReference := currentRef
	if ref, ok := merged.Get(pspdata.PSPReferenceKey); ok && ref != "" {
		pspReference = &ref
	}
	if pspReference != nil {
		merged.PurgeCallErrors()
	}
	return merged.String(), pspReference, nil
}

// GetResponsesForPayment returns the visible history for a payment, oldest
// first. Scanning from newest to oldest, every non-AUTHORIZE row is kept and
// the scan stops at the first AUTHORIZE row: only the completion row of a
// multi-step authorization survives, not its identify/challenge intermediates.
func (r *ResponseRepository) GetResponsesForPayment(ctx context.Context, paymentID, tenantID string) ([]*entity.ResponseRow, error) {
	query := `
		SELECT ` + responseColumns + `
		FROM adyen_responses
		WHERE kb_payment_id = ? AND kb_tenant_id = ?
		ORDER BY record_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, paymentID, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.ResponseRow, 0)
	for rows.Next() {
		item, err := scanResponseFromRows(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pruneResponses(items), nil
}

// GetLatestAuthorizationOrPurchase returns the most recent AUTHORIZE or
// PURCHASE row for a payment, or nil. The row's outcome code is deliberately
// not checked; callers project the actual state from it.
func (r *ResponseRepository) GetLatestAuthorizationOrPurchase(ctx context.Context, paymentID, tenantID string) (*entity.ResponseRow, error) {
	query := `
		SELECT ` + responseColumns + `
		FROM adyen_responses
		WHERE kb_payment_id = ? AND kb_tenant_id = ? AND transaction_type IN (?, ?)
		ORDER BY record_id DESC
		LIMIT 1
	`

	item := &entity.ResponseRow{}
	err := scanResponse(r.db.QueryRowContext(ctx, query, paymentID, tenantID,
		string(types.TransactionTypeAuthorize), string(types.TransactionTypePurchase)), item)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item, nil
}

// GetResponseByPSPReference returns the latest row carrying the reference; a
// reference can appear on several rows across 3-D Secure steps.
func (r *ResponseRepository) GetResponseByPSPReference(ctx context.Context, pspReference string) (*entity.ResponseRow, error) {
	query := `
		SELECT ` + responseColumns + `
		FROM adyen_responses
		WHERE psp_reference = ?
		ORDER BY record_id DESC
		LIMIT 1
	`

	item := &entity.ResponseRow{}
	err := scanResponse(r.db.QueryRowContext(ctx, query, pspReference), item)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *ResponseRepository) insert(ctx context.Context, row *entity.ResponseRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO adyen_responses (
			kb_account_id, kb_payment_id, kb_payment_transaction_id, kb_tenant_id,
			transaction_type, amount_cents, currency,
			psp_result, psp_reference, auth_code, result_code, refusal_reason, reference,
			issuer_url, md, pa_request, additional_data, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		row.AccountID,
		row.PaymentID,
		row.PaymentTransactionID,
		row.TenantID,
		string(row.TransactionType),
		nullableInt64Value(row.AmountCents),
		nullableStringValue(row.Currency),
		nullableStringValue(row.PSPResult),
		nullableStringValue(row.PSPReference),
		nullableStringValue(row.AuthCode),
		nullableStringValue(row.ResultCode),
		nullableStringValue(row.RefusalReason),
		nullableStringValue(row.Reference),
		nullableStringValue(row.IssuerURL),
		nullableStringValue(row.MD),
		nullableStringValue(row.PaReq),
		row.AdditionalData,
		row.CreatedAt,
	)
	return err
}

func (r *ResponseRepository) latestForTransaction(ctx context.Context, paymentTransactionID, tenantID string) (*entity.ResponseRow, error) {
	query := `
		SELECT ` + responseColumns + `
		FROM adyen_responses
		WHERE kb_payment_transaction_id = ? AND kb_tenant_id = ?
		ORDER BY record_id DESC
		LIMIT 1
	`

	item := &entity.ResponseRow{}
	err := scanResponse(r.db.QueryRowContext(ctx, query, paymentTransactionID, tenantID), item)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return item, nil
}

// pruneResponses collapses multi-step authorizations: walking newest to
// oldest, non-AUTHORIZE rows are kept and the walk stops after the first
// AUTHORIZE row. Input and output are both oldest first.
func pruneResponses(items []*entity.ResponseRow) []*entity.ResponseRow {
	kept := make([]*entity.ResponseRow, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		kept = append(kept, items[i])
		if items[i].TransactionType == types.TransactionTypeAuthorize {
			break
		}
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

func scanResponse(scan rowScanner, row *entity.ResponseRow) error {
	var (
		amountCents   sql.NullInt64
		currency      sql.NullString
		pspResult     sql.NullString
		pspReference  sql.NullString
		authCode      sql.NullString
		resultCode    sql.NullString
		refusalReason sql.NullString
		reference     sql.NullString
		issuerURL     sql.NullString
		md            sql.NullString
		paReq         sql.NullString
		txType        string
	)

	err := scan.Scan(
		&row.RecordID,
		&row.AccountID,
		&row.PaymentID,
		&row.PaymentTransactionID,
		&row.TenantID,
		&txType,
		&amountCents,
		&currency,
		&pspResult,
		&pspReference,
		&authCode,
		&resultCode,
		&refusalReason,
		&reference,
		&issuerURL,
		&md,
		&paReq,
		&row.AdditionalData,
		&row.CreatedAt,
	)
	if err != nil {
		return err
	}

	row.TransactionType = types.TransactionType(txType)
	row.AmountCents = int64PtrFromNull(amountCents)
	row.Currency = stringPtrFromNull(currency)
	row.PSPResult = stringPtrFromNull(pspResult)
	row.PSPReference = stringPtrFromNull(pspReference)
	row.AuthCode = stringPtrFromNull(authCode)
	row.ResultCode = stringPtrFromNull(resultCode)
	row.RefusalReason = stringPtrFromNull(refusalReason)
	row.Reference = stringPtrFromNull(reference)
	row.IssuerURL = stringPtrFromNull(issuerURL)
	row.MD = stringPtrFromNull(md)
	row.PaReq = stringPtrFromNull(paReq)

	return nil
}

func scanResponseFromRows(rows *sql.Rows) (*entity.ResponseRow, error) {
	item := &entity.ResponseRow{}
	if err := scanResponse(rows, item); err != nil {
		return nil, err
	}
	return item, nil
}
