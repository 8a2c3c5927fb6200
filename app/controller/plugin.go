package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/tgshanahan/killbill-adyen-plugin/app/factory"
	"github.com/tgshanahan/killbill-adyen-plugin/app/metrics"
	"github.com/tgshanahan/killbill-adyen-plugin/app/service"
	"github.com/tgshanahan/killbill-adyen-plugin/app/types"
)

type PluginController struct {
	paymentService         *service.PaymentService
	notificationService    *service.NotificationService
	transactionInfoService *service.TransactionInfoService
	logger                 logrus.FieldLogger
}

func NewPluginController(
	paymentService *service.PaymentService,
	notificationService *service.NotificationService,
	transactionInfoService *service.TransactionInfoService,
) *PluginController {
	return &PluginController{
		paymentService:         paymentService,
		notificationService:    notificationService,
		transactionInfoService: transactionInfoService,
		logger:                 factory.NewModuleLogger("plugin-controller"),
	}
}

// AuthorizeTransaction runs a new authorization attempt for a payment. A
// pending 3-D Secure outcome is returned as-is; the delayed check scheduled
// alongside it settles the transaction if the shopper never completes.
func (c *PluginController) AuthorizeTransaction(ctx echo.Context) error {
	req, err := types.NewAuthorizeTransactionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.Authorize(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment method not found")
		default:
			c.logger.WithError(err).Error("Authorize transaction failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, item)
}

// RegisterPaymentMethod stores a payment method's gateway token and card
// summary for later authorizations.
func (c *PluginController) RegisterPaymentMethod(ctx echo.Context) error {
	req, err := types.NewRegisterPaymentMethodRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.paymentService.RegisterPaymentMethod(ctx.Request().Context(), req); err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		c.logger.WithError(err).Error("Register payment method failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.NoContent(http.StatusCreated)
}

// DeletePaymentMethod tombstones a stored payment method.
func (c *PluginController) DeletePaymentMethod(ctx echo.Context) error {
	req, err := types.NewDeletePaymentMethodRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	if err := c.paymentService.RemovePaymentMethod(ctx.Request().Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment method not found")
		default:
			c.logger.WithError(err).Error("Delete payment method failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *PluginController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// HandleNotifications ingests a gateway notification batch. The gateway
// expects the literal body "[accepted]" and retries anything else.
func (c *PluginController) HandleNotifications(ctx echo.Context) error {
	req, err := types.NewNotificationRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	metrics.NotificationsReceived.Inc()
	if err := c.notificationService.Process(ctx.Request().Context(), req); err != nil {
		metrics.NotificationsFailed.Inc()
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		c.logger.WithError(err).Error("Notification processing failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.String(http.StatusOK, "[accepted]")
}

func (c *PluginController) GetTransactions(ctx echo.Context) error {
	req, err := types.NewTransactionHistoryRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.transactionInfoService.TransactionsForPayment(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment not found")
		default:
			c.logger.WithError(err).Error("Get transactions failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, item)
}

// GetNotifications lists the gateway events recorded for a payment.
func (c *PluginController) GetNotifications(ctx echo.Context) error {
	req, err := types.NewTransactionHistoryRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.notificationService.NotificationsForPayment(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		c.logger.WithError(err).Error("Get notifications failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, item)
}

func (c *PluginController) Metrics(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Response().WriteHeader(http.StatusOK)
	metrics.WritePrometheus(ctx.Response())
	return nil
}

func (c *PluginController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
