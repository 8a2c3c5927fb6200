package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/gateway"
	"github.com/tgshanahan/killbill-adyen-plugin/app/metrics"
	"github.com/tgshanahan/killbill-adyen-plugin/app/pspdata"
	"github.com/tgshanahan/killbill-adyen-plugin/app/repository"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
	"github.com/tgshanahan/killbill-adyen-plugin/config"
)

const threeDSFailureMessage = "3-D Secure authentication failed"

// TargetState selects the reconciliation variant for a task. Each variant
// supplies the intermediate result code it waits on and the extra properties
// of the forced follow-up call.
type TargetState string

const (
	TargetStateIdentifyShopper  TargetState = "identify-shopper"
	TargetStateChallengeShopper TargetState = "challenge-shopper"
)

func (s TargetState) resultCode() string {
	switch s {
	case TargetStateIdentifyShopper:
		return types.ResultCodeIdentifyShopper
	case TargetStateChallengeShopper:
		return types.ResultCodeChallengeShopper
	default:
		return ""
	}
}

// applyForcedProperties adds the fields that tell the gateway to settle the
// authentication now instead of stepping up further. For identify-shopper the
// completion indicator says device fingerprinting explicitly failed.
func (s TargetState) applyForcedProperties(props *pspdata.Data) {
	if s == TargetStateIdentifyShopper {
		props.Set(pspdata.ThreeDSCompIndKey, "N")
	}
}

// TargetStateForResult maps an intermediate classification to the task variant
// waiting on it.
func TargetStateForResult(result types.PSPResult) (TargetState, bool) {
	switch result {
	case types.PSPResultPendingIdentify:
		return TargetStateIdentifyShopper, true
	case types.PSPResultPendingChallenge:
		return TargetStateChallengeShopper, true
	default:
		return "", false
	}
}

type reconciliationLedger interface {
	GetLatestAuthorizationOrPurchase(ctx context.Context, paymentID, tenantID string) (*entity.ResponseRow, error)
}

type reconciliationGateway interface {
	Authorize(ctx context.Context, req *gateway.AuthorizeRequest) (*gateway.Outcome, error)
}

type taskRepository interface {
	Create(ctx context.Context, task *entity.ReconciliationTask) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]*entity.ReconciliationTask, error)
	MarkExecuted(ctx context.Context, taskKey string) error
}

type ReconciliationService struct {
	tasks   taskRepository
	ledger  reconciliationLedger
	gateway reconciliationGateway
	host    HostAPI
	cfg     config.ReconciliationConfig
	log     logrus.FieldLogger
}

func NewReconciliationService(
	tasks taskRepository,
	ledger reconciliationLedger,
	gw reconciliationGateway,
	host HostAPI,
	cfg config.ReconciliationConfig,
	log logrus.FieldLogger,
) *ReconciliationService {
	return &ReconciliationService{
		tasks:   tasks,
		ledger:  ledger,
		gateway: gw,
		host:    host,
		cfg:     cfg,
		log:     log,
	}
}

type ScheduleCheckInput struct {
	TenantID               string
	PaymentMethodID        string
	PaymentID              string
	PaymentTransactionID   string
	TransactionExternalKey string
	TargetState            TargetState
	Username               string
	Password               string
}

// ScheduleCheck persists a delayed check that fires after the configured
// window. Scheduling the same transaction and target twice is absorbed; the
// first task wins.
func (s *ReconciliationService) ScheduleCheck(ctx context.Context, in *ScheduleCheckInput) error {
	if in.TargetState.resultCode() == "" {
		return fmt.Errorf("%w: unknown target state %q", ErrInvalidRequest, in.TargetState)
	}

	task := &entity.ReconciliationTask{
		TaskKey:                uuid.NewString(),
		TenantID:               in.TenantID,
		PaymentMethodID:        in.PaymentMethodID,
		PaymentID:              in.PaymentID,
		PaymentTransactionID:   in.PaymentTransactionID,
		TransactionExternalKey: in.TransactionExternalKey,
		TargetState:            string(in.TargetState),
		Username:               in.Username,
		Password:               in.Password,
		FireAt:                 time.Now().UTC().Add(s.cfg.CheckDelay),
	}

	err := s.tasks.Create(ctx, task)
	if errors.Is(err, repository.ErrTaskAlreadyExists) {
		return nil
	}
	return err
}

// Execute runs one delayed check. The transaction is acted on only when the
// ledger's latest authorization row is still stuck at the task's target
// intermediate state; every other shape means the payment already resolved
// through another path and the task terminates silently. Host system failures
// propagate so the caller's retry loop picks the task up again.
func (s *ReconciliationService) Execute(ctx context.Context, task *entity.ReconciliationTask) error {
	target := TargetState(task.TargetState)
	if target.resultCode() == "" {
		return fmt.Errorf("%w: unknown target state %q", ErrInvalidRequest, task.TargetState)
	}

	log := s.log.WithField("task_key", task.TaskKey).
		WithField("kb_payment_transaction_id", task.PaymentTransactionID)

	latest, err := s.ledger.GetLatestAuthorizationOrPurchase(ctx, task.PaymentID, task.TenantID)
	if err != nil {
		return err
	}
	if latest == nil {
		log.Debug("no authorization row, nothing to reconcile")
		return nil
	}
	if latest.PaymentTransactionID != task.PaymentTransactionID {
		log.Debug("payment moved on to another transaction")
		return nil
	}
	if latest.ResultCode == nil || *latest.ResultCode != target.resultCode() {
		log.Debug("transaction already resolved")
		return nil
	}

	props, err := pspdata.Parse(latest.AdditionalData)
	if err != nil {
		return err
	}
	target.applyForcedProperties(props)

	var amountCents int64
	var currency string
	if latest.AmountCents != nil {
		amountCents = *latest.AmountCents
	}
	if latest.Currency != nil {
		currency = *latest.Currency
	}

	outcome, err := s.gateway.Authorize(ctx, &gateway.AuthorizeRequest{
		AccountID:              latest.AccountID,
		PaymentID:              task.PaymentID,
		PaymentTransactionID:   task.PaymentTransactionID,
		TenantID:               task.TenantID,
		PaymentMethodID:        task.PaymentMethodID,
		TransactionExternalKey: task.TransactionExternalKey,
		AmountCents:            amountCents,
		Currency:               currency,
		Properties:             props,
	})
	if err != nil {
		return err
	}
	log.WithField("psp_result", string(outcome.Result)).Info("forced authorization settled")

	// The forced call's own ledger row decides the terminal state. A shopper
	// who completed concurrently surfaces there as Authorised; rows written
	// for other transactions in the meantime are irrelevant to this task.
	status := types.TransactionStatusError
	message := threeDSFailureMessage
	if outcome.Row != nil && outcome.Row.ResultCode != nil && *outcome.Row.ResultCode == types.ResultCodeAuthorised {
		status = types.TransactionStatusProcessed
		message = ""
	}

	return withImpersonation(ctx, s.host, task.Username, task.Password, func(session string) error {
		payment, err := s.host.GetPayment(ctx, session, task.TenantID, task.PaymentID)
		if err != nil {
			return fmt.Errorf("fetch payment %s: %w", task.PaymentID, err)
		}
		if payment.TransactionByID(task.PaymentTransactionID) == nil {
			return fmt.Errorf("transaction %s not found on payment %s", task.PaymentTransactionID, task.PaymentID)
		}

		return s.host.UpdateTransactionState(ctx, session, task.TenantID, &TransactionStateUpdate{
			PaymentID:            task.PaymentID,
			PaymentTransactionID: task.PaymentTransactionID,
			Status:               status,
			Message:              message,
		})
	})
}

// RunDueTasksBatch executes every due task once. Business outcomes, silent
// no-ops included, mark the task executed; infrastructure errors leave the
// task due so the next sweep retries it.
func (s *ReconciliationService) RunDueTasksBatch(ctx context.Context) error {
	items, err := s.tasks.ListDue(ctx, time.Now().UTC(), s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, task := range items {
		if task == nil {
			continue
		}

		if err := s.Execute(ctx, task); err != nil {
			s.log.WithError(err).WithField("task_key", task.TaskKey).Error("reconciliation task failed")
			metrics.ReconciliationFailed.Inc()
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		metrics.ReconciliationExecuted.Inc()

		if err := s.tasks.MarkExecuted(ctx, task.TaskKey); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

func (s *ReconciliationService) batchSize() int {
	if s.cfg.BatchSize > 0 {
		return s.cfg.BatchSize
	}
	return 100
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
