package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/site-ledger/internal/handlers/v1/carryforward"
	"github.com/carson-networks/site-ledger/internal/handlers/v1/site"
	"github.com/carson-networks/site-ledger/internal/handlers/v1/status"
	"github.com/carson-networks/site-ledger/internal/handlers/v1/summary"
	"github.com/carson-networks/site-ledger/internal/handlers/v1/transaction"
	"github.com/carson-networks/site-ledger/internal/logging"
	"github.com/carson-networks/site-ledger/internal/service"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Rest struct {
	Logger  *logrus.Logger
	Port    string
	Service *service.Service
	Store   pinger
}

// Handler builds the router: /status plus the v1 API with its OpenAPI docs.
func (r *Rest) Handler() http.Handler {
	mux := http.NewServeMux()

	statusHandler := status.NewHandler(r.Store)
	mux.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	api := humago.New(mux, huma.DefaultConfig("Site Ledger", "1.0.0"))
	api.UseMiddleware(logging.Middleware(r.Logger))

	site.NewHandler(r.Service.Site).Register(api)
	transaction.NewCreateTransactionHandler(r.Service.Transaction).Register(api)
	transaction.NewGetTransactionHandler(r.Service.Transaction).Register(api)
	transaction.NewDeleteTransactionHandler(r.Service.Transaction).Register(api)
	transaction.NewListTransactionsHandler(r.Service.Transaction).Register(api)
	carryforward.NewReconcileHandler(r.Service.Ledger).Register(api)
	carryforward.NewBudgetHandler(r.Service.Ledger).Register(api)
	carryforward.NewHistoryHandler(r.Service.Ledger).Register(api)
	summary.NewHandler(r.Service.Ledger).Register(api)

	return mux
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (r *Rest) Serve(ctx context.Context) error {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Handler(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
		return err
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
