// Package commands implements ledgerctl, the operator CLI for the site ledger.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/carson-networks/site-ledger/internal/config"
	"github.com/carson-networks/site-ledger/internal/events"
	"github.com/carson-networks/site-ledger/internal/logging"
	"github.com/carson-networks/site-ledger/internal/operator"
	"github.com/carson-networks/site-ledger/internal/service"
	"github.com/carson-networks/site-ledger/internal/storage"
)

// Opener builds the ledger backend for a command.
type Opener func(env *config.Config, logger *logrus.Logger) (storage.Backend, error)

type runtime struct {
	open Opener
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(storage.Open)
}

func newRootCommand(open Opener) *cobra.Command {
	rt := &runtime{open: open}

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the construction site ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newMigrateCommand(),
		newSiteCommand(rt),
		newReconcileCommand(rt),
		newBudgetCommand(rt),
		newPendingCommand(rt),
		newDailyCommand(rt),
		newHistoryCommand(rt),
	)

	return rootCmd
}

// withService runs fn against a freshly wired service and tears it down afterwards.
func (rt *runtime) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *service.Service) error) error {
	env, err := config.ProcessEnvironmentVariables()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.SetupLogging(env.LogLevel)
	logger.SetOutput(cmd.ErrOrStderr())

	backend, err := rt.open(env, logger)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer backend.Close()

	publisher, release := events.NewPublisher(env.AMQPURL, env.AMQPExchange, logger)
	defer release()

	delegator := operator.NewOperatorDelegator(backend, env.OperatorWorkers, env.StoreTimeout, logger)
	delegator.Start()
	defer delegator.Stop()

	svc := service.NewService(backend, delegator, publisher, env.OperatorWorkers, logger)
	return fn(cmd.Context(), svc)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
