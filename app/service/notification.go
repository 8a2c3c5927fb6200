package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/mapper"
	"github.com/tgshanahan/killbill-adyen-plugin/app/pspdata"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

const eventCodeAuthorisation = "AUTHORISATION"

type notificationLedger interface {
	GetResponseByPSPReference(ctx context.Context, pspReference string) (*entity.ResponseRow, error)
	UpdateLatestResponse(ctx context.Context, paymentTransactionID, tenantID string, newResult *types.PSPResult, properties *pspdata.Data) (*entity.ResponseRow, error)
}

type notificationRepository interface {
	AddNotification(ctx context.Context, row *entity.NotificationRow) error
	GetNotificationsForPayment(ctx context.Context, paymentID, tenantID string) ([]*entity.NotificationRow, error)
}

type hppRequestLookup interface {
	GetHPPRequestByExternalKey(ctx context.Context, externalKey, tenantID string) (*entity.HPPRequestRow, error)
}

// NotificationService ingests the gateway's asynchronous event stream. Events
// are appended verbatim and, for authorization outcomes, merged into the
// latest ledger row so the projected status catches up without a new
// synchronous call.
type NotificationService struct {
	notifications notificationRepository
	ledger        notificationLedger
	hppRequests   hppRequestLookup
	log           logrus.FieldLogger
}

func NewNotificationService(notifications notificationRepository, ledger notificationLedger, hppRequests hppRequestLookup, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{notifications: notifications, ledger: ledger, hppRequests: hppRequests, log: log}
}

func (s *NotificationService) Process(ctx context.Context, req *types.NotificationRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var firstErr error
	for i := range req.Items {
		if err := s.processItem(ctx, req.TenantID, &req.Items[i]); err != nil {
			s.log.WithError(err).WithField("event_code", req.Items[i].EventCode).Error("notification item failed")
			firstErr = keepFirstErr(firstErr, err)
		}
	}
	return firstErr
}

func (s *NotificationService) processItem(ctx context.Context, tenantID string, item *types.NotificationRequestItem) error {
	row := &entity.NotificationRow{
		EventCode:         item.EventCode,
		Success:           item.IsSuccess(),
		PSPReference:      stringPtrIfSet(item.PSPReference),
		OriginalReference: stringPtrIfSet(item.OriginalReference),
		MerchantReference: stringPtrIfSet(item.MerchantReference),
		Reason:            stringPtrIfSet(item.Reason),
		TenantID:          stringPtrIfSet(tenantID),
		AdditionalData:    pspdata.FromMap(item.AdditionalData).String(),
		CreatedAt:         time.Now().UTC(),
	}
	if item.Amount.Value != 0 || item.Amount.Currency != "" {
		row.AmountCents = &item.Amount.Value
		row.Currency = stringPtrIfSet(item.Amount.Currency)
	}

	// A reference seen before lets the event inherit the local identity of
	// the row it belongs to. Hosted-page payments can notify before any
	// response row exists; the recorded redirect then supplies the identity
	// through its merchant reference.
	var mergeTxID string
	if matched := s.matchResponse(ctx, item); matched != nil {
		row.AccountID = &matched.AccountID
		row.PaymentID = &matched.PaymentID
		row.PaymentTransactionID = &matched.PaymentTransactionID
		if row.TenantID == nil {
			row.TenantID = &matched.TenantID
		}
		txType := string(matched.TransactionType)
		row.TransactionType = &txType
		mergeTxID = matched.PaymentTransactionID
	} else if hpp := s.matchHPPRequest(ctx, tenantID, item.MerchantReference); hpp != nil {
		row.AccountID = &hpp.AccountID
		row.PaymentID = hpp.PaymentID
		row.PaymentTransactionID = hpp.PaymentTransactionID
		if row.TenantID == nil {
			row.TenantID = &hpp.TenantID
		}
		if hpp.PaymentTransactionID != nil {
			mergeTxID = *hpp.PaymentTransactionID
		}
	}

	if err := s.notifications.AddNotification(ctx, row); err != nil {
		return err
	}

	if item.EventCode != eventCodeAuthorisation || mergeTxID == "" {
		return nil
	}

	props := pspdata.FromMap(item.AdditionalData)
	if item.PSPReference != "" {
		props.Set(pspdata.PSPReferenceKey, item.PSPReference)
	}

	result := types.PSPResultAuthorized
	if !item.IsSuccess() {
		result = types.PSPResultRefused
	}

	tenant := tenantID
	if tenant == "" && row.TenantID != nil {
		tenant = *row.TenantID
	}
	_, err := s.ledger.UpdateLatestResponse(ctx, mergeTxID, tenant, &result, props)
	return err
}

// NotificationsForPayment returns every recorded gateway event for a payment,
// oldest first. An empty list is a valid answer; the event log is append-only
// and starts empty for every payment.
func (s *NotificationService) NotificationsForPayment(ctx context.Context, req *types.TransactionHistoryRequest) (*types.NotificationHistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	rows, err := s.notifications.GetNotificationsForPayment(ctx, req.PaymentID, req.TenantID)
	if err != nil {
		return nil, err
	}

	resp := &types.NotificationHistoryResponse{
		PaymentID:     req.PaymentID,
		Notifications: make([]*types.NotificationInfo, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Notifications = append(resp.Notifications, mapper.NotificationInfoFromRow(row))
	}
	return resp, nil
}

func (s *NotificationService) matchHPPRequest(ctx context.Context, tenantID, merchantReference string) *entity.HPPRequestRow {
	if merchantReference == "" || s.hppRequests == nil {
		return nil
	}
	hpp, err := s.hppRequests.GetHPPRequestByExternalKey(ctx, merchantReference, tenantID)
	if err != nil {
		s.log.WithError(err).WithField("merchant_reference", merchantReference).Error("hpp request lookup failed")
		return nil
	}
	return hpp
}

func (s *NotificationService) matchResponse(ctx context.Context, item *types.NotificationRequestItem) *entity.ResponseRow {
	for _, ref := range []string{item.PSPReference, item.OriginalReference} {
		if ref == "" {
			continue
		}
		matched, err := s.ledger.GetResponseByPSPReference(ctx, ref)
		if err != nil {
			s.log.WithError(err).WithField("psp_reference", ref).Error("response lookup failed")
			return nil
		}
		if matched != nil {
			return matched
		}
	}
	return nil
}

func stringPtrIfSet(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
