package gateway

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/metrics"
	"github.com/tgshanahan/killbill-adyen-plugin/app/pspdata"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

type responseLedger interface {
	AddResponse(ctx context.Context, row *entity.ResponseRow) (*entity.ResponseRow, error)
	AddModificationResponse(ctx context.Context, row *entity.ResponseRow) (*entity.ResponseRow, error)
}

// Outcome is a persisted gateway interaction: the classified result plus the
// ledger row the caller can project a status from.
type Outcome struct {
	Result types.PSPResult
	Row    *entity.ResponseRow
}

// Facade wraps the wire client so that every call, failed ones included,
// leaves a ledger row. Wire failures are not returned as errors; they are
// recorded on the row as local call-error markers and classified as Error,
// because the payment state machine must keep moving even when the gateway
// is unreachable.
type Facade struct {
	client Client
	ledger responseLedger
	log    logrus.FieldLogger
}

func NewFacade(client Client, ledger responseLedger, log logrus.FieldLogger) *Facade {
	return &Facade{client: client, ledger: ledger, log: log}
}

func (f *Facade) Authorize(ctx context.Context, req *AuthorizeRequest) (*Outcome, error) {
	metrics.AuthorizeCalls.Inc()
	result, callErr := f.client.Authorize(ctx, req)
	if callErr != nil {
		metrics.AuthorizeCallErrors.Inc()
	}

	row := &entity.ResponseRow{
		AccountID:            req.AccountID,
		PaymentID:            req.PaymentID,
		PaymentTransactionID: req.PaymentTransactionID,
		TenantID:             req.TenantID,
		TransactionType:      types.TransactionTypeAuthorize,
		AmountCents:          int64Ptr(req.AmountCents),
		Currency:             stringPtr(req.Currency),
		Reference:            stringPtr(req.TransactionExternalKey),
	}

	if callErr != nil {
		f.log.WithError(callErr).WithField("kb_payment_transaction_id", req.PaymentTransactionID).
			Error("adyen authorise call failed")

		row.PSPResult = stringPtr(string(types.PSPResultError))
		row.AdditionalData = callErrorData(callErr).String()

		saved, err := f.ledger.AddResponse(ctx, row)
		if err != nil {
			return nil, err
		}
		return &Outcome{Result: types.PSPResultError, Row: saved}, nil
	}

	classified := types.PSPResultForCode(result.ResultCode)

	row.PSPResult = stringPtr(string(classified))
	row.ResultCode = stringPtrIfSet(result.ResultCode)
	row.PSPReference = stringPtrIfSet(result.PSPReference)
	row.AuthCode = stringPtrIfSet(result.AuthCode)
	row.RefusalReason = stringPtrIfSet(result.RefusalReason)
	row.IssuerURL = stringPtrIfSet(result.IssuerURL)
	row.MD = stringPtrIfSet(result.MD)
	row.PaReq = stringPtrIfSet(result.PaReq)
	row.AdditionalData = pspdata.FromMap(result.AdditionalData).String()

	saved, err := f.ledger.AddResponse(ctx, row)
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: classified, Row: saved}, nil
}

func (f *Facade) Modify(ctx context.Context, req *ModificationRequest) (*Outcome, error) {
	result, callErr := f.client.Modify(ctx, req)

	row := &entity.ResponseRow{
		AccountID:            req.AccountID,
		PaymentID:            req.PaymentID,
		PaymentTransactionID: req.PaymentTransactionID,
		TenantID:             req.TenantID,
		TransactionType:      req.TransactionType,
		AmountCents:          int64Ptr(req.AmountCents),
		Currency:             stringPtr(req.Currency),
	}

	if callErr != nil {
		f.log.WithError(callErr).WithField("kb_payment_transaction_id", req.PaymentTransactionID).
			Error("adyen modification call failed")

		row.PSPResult = stringPtr(string(types.PSPResultError))
		row.AdditionalData = callErrorData(callErr).String()

		saved, err := f.ledger.AddModificationResponse(ctx, row)
		if err != nil {
			return nil, err
		}
		return &Outcome{Result: types.PSPResultError, Row: saved}, nil
	}

	classified := types.PSPResultForCode(result.Response)

	row.PSPResult = stringPtr(string(classified))
	row.PSPReference = stringPtrIfSet(result.PSPReference)
	row.AdditionalData = pspdata.FromMap(result.AdditionalData).String()

	saved, err := f.ledger.AddModificationResponse(ctx, row)
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: classified, Row: saved}, nil
}

// callErrorData builds the marker properties a later PSP reference purges.
func callErrorData(callErr error) *pspdata.Data {
	data := pspdata.New()
	data.Set(pspdata.CallErrorStatusKey, "REQUEST_NOT_SEND")
	data.Set(pspdata.ExceptionClassKey, fmt.Sprintf("%T", callErr))
	data.Set(pspdata.ExceptionMessageKey, callErr.Error())
	return data
}

func stringPtr(v string) *string {
	return &v
}

func stringPtrIfSet(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}
