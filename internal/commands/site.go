package commands

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/carson-networks/site-ledger/internal/service"
	"github.com/carson-networks/site-ledger/internal/storage/site"
)

func newSiteCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Manage construction sites",
	}
	cmd.AddCommand(newSiteCreateCommand(rt), newSiteListCommand(rt))
	return cmd
}

func newSiteCreateCommand(rt *runtime) *cobra.Command {
	var name, location, manager, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			managerID, err := uuid.FromString(manager)
			if err != nil {
				return fmt.Errorf("invalid --manager: %w", err)
			}
			create := site.SiteCreate{
				Name:      name,
				Location:  location,
				ManagerID: managerID,
				Status:    site.Status(status),
			}
			return rt.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				created, err := svc.Site.CreateSite(ctx, create)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), toSiteView(created))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "site name (required)")
	cmd.Flags().StringVar(&location, "location", "", "site location")
	cmd.Flags().StringVar(&manager, "manager", "", "manager UUID (required)")
	cmd.Flags().StringVar(&status, "status", "", "initial status, defaults to ACTIVE")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("manager")

	return cmd
}

func newSiteListCommand(rt *runtime) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter *site.Status
			if status != "" {
				s := site.Status(status)
				filter = &s
			}
			return rt.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				sites, err := svc.Site.ListSites(ctx, filter)
				if err != nil {
					return err
				}
				views := make([]siteView, len(sites))
				for i, s := range sites {
					views[i] = toSiteView(s)
				}
				return printJSON(cmd.OutOrStdout(), views)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only sites with this status")
	return cmd
}
