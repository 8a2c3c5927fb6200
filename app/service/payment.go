package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tgshanahan/killbill-adyen-plugin/app/entity"
	"github.com/tgshanahan/killbill-adyen-plugin/app/gateway"
	"github.com/tgshanahan/killbill-adyen-plugin/app/mapper"
	"github.com/tgshanahan/killbill-adyen-plugin/app/pspdata"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
	"github.com/tgshanahan/killbill-adyen-plugin/config"
)

type paymentMethodRepository interface {
	AddPaymentMethod(ctx context.Context, row *entity.PaymentMethodRow) error
	GetPaymentMethod(ctx context.Context, paymentMethodID, tenantID string) (*entity.PaymentMethodRow, error)
	MarkDeleted(ctx context.Context, paymentMethodID, tenantID string) error
}

type hppRequestRepository interface {
	AddHPPRequest(ctx context.Context, row *entity.HPPRequestRow) error
}

type checkScheduler interface {
	ScheduleCheck(ctx context.Context, in *ScheduleCheckInput) error
}

type paymentGateway interface {
	Authorize(ctx context.Context, req *gateway.AuthorizeRequest) (*gateway.Outcome, error)
}

// PaymentService runs host-initiated authorization attempts. An intermediate
// 3-D Secure outcome leaves the transaction pending and schedules the delayed
// check that will settle it if the shopper never returns.
type PaymentService struct {
	gateway        paymentGateway
	paymentMethods paymentMethodRepository
	hppRequests    hppRequestRepository
	scheduler      checkScheduler
	hostCfg        config.HostConfig
	recCfg         config.ReconciliationConfig
	log            logrus.FieldLogger
	now            func() time.Time
}

func NewPaymentService(
	gw paymentGateway,
	paymentMethods paymentMethodRepository,
	hppRequests hppRequestRepository,
	scheduler checkScheduler,
	hostCfg config.HostConfig,
	recCfg config.ReconciliationConfig,
	log logrus.FieldLogger,
) *PaymentService {
	return &PaymentService{
		gateway:        gw,
		paymentMethods: paymentMethods,
		hppRequests:    hppRequests,
		scheduler:      scheduler,
		hostCfg:        hostCfg,
		recCfg:         recCfg,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// RegisterPaymentMethod stores the gateway token and card summary for a host
// payment method so later authorizations can reference them.
func (s *PaymentService) RegisterPaymentMethod(ctx context.Context, req *types.RegisterPaymentMethodRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	row := &entity.PaymentMethodRow{
		AccountID:       req.AccountID,
		PaymentMethodID: req.PaymentMethodID,
		TenantID:        req.TenantID,
		Token:           stringPtrIfSet(req.Token),
		CCType:          stringPtrIfSet(req.CCType),
		CCLast4:         stringPtrIfSet(req.CCLast4),
		IsDefault:       req.IsDefault,
		AdditionalData:  pspdata.FromMap(req.Properties).String(),
	}
	if req.CCExpMonth != 0 {
		row.CCExpMonth = &req.CCExpMonth
	}
	if req.CCExpYear != 0 {
		row.CCExpYear = &req.CCExpYear
	}

	return s.paymentMethods.AddPaymentMethod(ctx, row)
}

// RemovePaymentMethod tombstones a stored payment method. The row stays for
// history; Authorize refuses it from now on.
func (s *PaymentService) RemovePaymentMethod(ctx context.Context, req *types.DeletePaymentMethodRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	method, err := s.paymentMethods.GetPaymentMethod(ctx, req.PaymentMethodID, req.TenantID)
	if err != nil {
		return err
	}
	if method == nil {
		return fmt.Errorf("%w: payment method %s", ErrPaymentNotFound, req.PaymentMethodID)
	}

	return s.paymentMethods.MarkDeleted(ctx, req.PaymentMethodID, req.TenantID)
}

func (s *PaymentService) Authorize(ctx context.Context, req *types.AuthorizeTransactionRequest) (*types.TransactionInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	method, err := s.paymentMethods.GetPaymentMethod(ctx, req.PaymentMethodID, req.TenantID)
	if err != nil {
		return nil, err
	}
	if method == nil || method.IsDeleted {
		return nil, fmt.Errorf("%w: payment method %s", ErrPaymentNotFound, req.PaymentMethodID)
	}

	props := pspdata.FromMap(req.Properties)
	if method.Token != nil {
		props.Set("selectedRecurringDetailReference", *method.Token)
	}

	outcome, err := s.gateway.Authorize(ctx, &gateway.AuthorizeRequest{
		AccountID:              req.AccountID,
		PaymentID:              req.PaymentID,
		PaymentTransactionID:   req.PaymentTransactionID,
		TenantID:               req.TenantID,
		PaymentMethodID:        req.PaymentMethodID,
		TransactionExternalKey: req.TransactionExternalKey,
		AmountCents:            req.AmountCents,
		Currency:               req.Currency,
		Properties:             props,
	})
	if err != nil {
		return nil, err
	}

	if outcome.Row != nil && outcome.Row.IssuerURL != nil {
		hppRow := &entity.HPPRequestRow{
			AccountID:              req.AccountID,
			PaymentID:              &req.PaymentID,
			PaymentTransactionID:   &req.PaymentTransactionID,
			TenantID:               req.TenantID,
			TransactionExternalKey: req.TransactionExternalKey,
			AdditionalData:         outcome.Row.AdditionalData,
		}
		if err := s.hppRequests.AddHPPRequest(ctx, hppRow); err != nil {
			s.log.WithError(err).Warn("failed to record shopper redirect")
		}
	}

	if target, ok := TargetStateForResult(outcome.Result); ok {
		err := s.scheduler.ScheduleCheck(ctx, &ScheduleCheckInput{
			TenantID:               req.TenantID,
			PaymentMethodID:        req.PaymentMethodID,
			PaymentID:              req.PaymentID,
			PaymentTransactionID:   req.PaymentTransactionID,
			TransactionExternalKey: req.TransactionExternalKey,
			TargetState:            target,
			Username:               s.hostCfg.Username,
			Password:               s.hostCfg.Password,
		})
		if err != nil {
			return nil, err
		}
	}

	return mapper.TransactionInfoFromRow(outcome.Row, s.recCfg.Pending3DSExpiration, s.now()), nil
}
