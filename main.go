package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/site-ledger/api"
	"github.com/carson-networks/site-ledger/internal/config"
	"github.com/carson-networks/site-ledger/internal/events"
	"github.com/carson-networks/site-ledger/internal/logging"
	"github.com/carson-networks/site-ledger/internal/operator"
	"github.com/carson-networks/site-ledger/internal/service"
	"github.com/carson-networks/site-ledger/internal/storage"
)

func main() {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.WithField("backend", envConfig.Backend).Info("site-ledger starting")

	backend, err := storage.Open(envConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("storage.Open")
		return
	}
	defer backend.Close()

	publisher, closePublisher := events.NewPublisher(envConfig.AMQPURL, envConfig.AMQPExchange, logger)
	defer closePublisher()

	delegator := operator.NewOperatorDelegator(backend, envConfig.OperatorWorkers, envConfig.StoreTimeout, logger)
	delegator.Start()
	defer delegator.Stop()

	svc := service.NewService(backend, delegator, publisher, envConfig.OperatorWorkers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		httpRest := api.Rest{
			Logger:  logger,
			Port:    envConfig.HTTPPort,
			Service: svc,
			Store:   backend,
		}
		return httpRest.Serve(ctx)
	})

	if err := group.Wait(); err != nil {
		logger.WithError(err).Error("site-ledger stopped with error")
		return
	}
	logger.Info("site-ledger stopped")
}
