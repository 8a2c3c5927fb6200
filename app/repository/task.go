package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
)

var ErrTaskAlreadyExists = errors.New("reconciliation task already exists")

// TaskRepository persists delayed reconciliation checks. A task key is unique,
// so scheduling the same check twice is a no-op for the caller to absorb.
type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *entity.ReconciliationTask) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO adyen_reconciliation_tasks (
			task_key, kb_tenant_id, kb_payment_method_id, kb_payment_id,
			kb_payment_transaction_id, transaction_external_key, target_state,
			username, password, fire_at, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.TaskKey,
		task.TenantID,
		task.PaymentMethodID,
		task.PaymentID,
		task.PaymentTransactionID,
		task.TransactionExternalKey,
		task.TargetState,
		task.Username,
		task.Password,
		task.FireAt,
		task.CreatedAt,
	)
	if isDuplicateEntryError(err) {
		return ErrTaskAlreadyExists
	}
	return err
}

// ListDue returns unexecuted tasks whose fire time has passed, oldest first.
func (r *TaskRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.ReconciliationTask, error) {
	query := `
		SELECT record_id, task_key, kb_tenant_id, kb_payment_method_id, kb_payment_id,
			kb_payment_transaction_id, transaction_external_key, target_state,
			username, password, fire_at, executed_at, created_at
		FROM adyen_reconciliation_tasks
		WHERE executed_at IS NULL AND fire_at <= ?
		ORDER BY fire_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.ReconciliationTask, 0)
	for rows.Next() {
		var (
			item       entity.ReconciliationTask
			executedAt sql.NullTime
		)
		err := rows.Scan(
			&item.RecordID,
			&item.TaskKey,
			&item.TenantID,
			&item.PaymentMethodID,
			&item.PaymentID,
			&item.PaymentTransactionID,
			&item.TransactionExternalKey,
			&item.TargetState,
			&item.Username,
			&item.Password,
			&item.FireAt,
			&executedAt,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		item.ExecutedAt = timePtrFromNull(executedAt)
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *TaskRepository) MarkExecuted(ctx context.Context, taskKey string) error {
	query := `
		UPDATE adyen_reconciliation_tasks
		SET executed_at = ?
		WHERE task_key = ? AND executed_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), taskKey)
	return err
}
