package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carson-networks/site-ledger/internal/config"
	"github.com/carson-networks/site-ledger/internal/storage"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := config.ProcessEnvironmentVariables()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if env.Backend != config.BackendPostgres {
				return fmt.Errorf("migrate needs the %s backend, configured %s", config.BackendPostgres, env.Backend)
			}

			db, err := sql.Open("postgres", storage.ConnectionString(env))
			if err != nil {
				return fmt.Errorf("sql.Open: %w", err)
			}
			defer db.Close()

			result, err := storage.RunMigrations(db)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]uint{
				"preMigrationVersion":  result.PreVersion,
				"postMigrationVersion": result.PostVersion,
			})
		},
	}
}
