package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tgshanahan/killbill-adyen-plugin/app/controller"
	"github.com/tgshanahan/killbill-adyen-plugin/app/gateway"
	"github.com/tgshanahan/killbill-adyen-plugin/app/repository"
	"github.com/tgshanahan/killbill-adyen-plugin/app/service"
	"github.com/tgshanahan/killbill-adyen-plugin/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for gateway notifications and transaction history.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, services, cleanup := mustCreateServices()
	defer cleanup()

	pluginController := controller.NewPluginController(services.payments, services.notifications, services.transactions)
	e := setupHTTPServer(pluginController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(pluginController *controller.PluginController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", pluginController.Health)
	e.GET("/metrics", pluginController.Metrics)
	e.POST("/notifications", pluginController.HandleNotifications)

	payments := e.Group("/payments")
	payments.GET("/:paymentId/transactions", pluginController.GetTransactions)
	payments.POST("/:paymentId/transactions", pluginController.AuthorizeTransaction)
	payments.GET("/:paymentId/notifications", pluginController.GetNotifications)

	paymentMethods := e.Group("/payment-methods")
	paymentMethods.POST("", pluginController.RegisterPaymentMethod)
	paymentMethods.DELETE("/:paymentMethodId", pluginController.DeletePaymentMethod)

	return e
}

type services struct {
	payments       *service.PaymentService
	notifications  *service.NotificationService
	transactions   *service.TransactionInfoService
	reconciliation *service.ReconciliationService
}

func mustCreateServices() (*config.Config, *services, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	responseRepo := repository.NewResponseRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	paymentMethodRepo := repository.NewPaymentMethodRepository(db)
	hppRequestRepo := repository.NewHPPRequestRepository(db)

	adyenClient := gateway.NewAdyenClient(gateway.AdyenConfig{
		APIKey:          cfg.Adyen.APIKey,
		MerchantAccount: cfg.Adyen.MerchantAccount,
		PaymentURL:      cfg.Adyen.PaymentURL,
		HTTPTimeout:     cfg.Adyen.HTTPTimeout,
	})
	facade := gateway.NewFacade(adyenClient, responseRepo, logrus.StandardLogger().WithField("module", "adyen-gateway"))

	hostClient := service.NewHostClient(service.HostConfig{
		BaseURL:     cfg.Host.BaseURL,
		APIKey:      cfg.Host.APIKey,
		HTTPTimeout: cfg.Host.HTTPTimeout,
	})

	logger := logrus.StandardLogger().WithField("module", "plugin-service")
	reconciliation := service.NewReconciliationService(taskRepo, responseRepo, facade, hostClient, cfg.Reconciliation, logger)
	s := &services{
		payments:       service.NewPaymentService(facade, paymentMethodRepo, hppRequestRepo, reconciliation, cfg.Host, cfg.Reconciliation, logger),
		notifications:  service.NewNotificationService(notificationRepo, responseRepo, hppRequestRepo, logger),
		transactions:   service.NewTransactionInfoService(responseRepo, cfg.Reconciliation),
		reconciliation: reconciliation,
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, s, cleanup
}

func configureLogging(cfg *config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	return nil
}
