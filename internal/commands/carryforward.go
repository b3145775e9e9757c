package commands

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/service"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
)

func parseSite(raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --site: %w", err)
	}
	return id, nil
}

func parseDate(flag, raw string) (civil.Date, error) {
	date, err := civil.ParseDate(raw)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return date, nil
}

func parseOptionalDate(flag, raw string) (*civil.Date, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := parseDate(flag, raw)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func newReconcileCommand(rt *runtime) *cobra.Command {
	var siteFlag, dateFlag string
	var all bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Close out a day for one site or for every active site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDate("date", dateFlag)
			if err != nil {
				return err
			}
			if all == (siteFlag != "") {
				return fmt.Errorf("exactly one of --site or --all is required")
			}

			if all {
				return rt.withService(cmd, func(ctx context.Context, svc *service.Service) error {
					results, err := svc.Ledger.ReconcileDay(ctx, date)
					if err != nil {
						return err
					}
					type result struct {
						SiteID       string            `json:"siteID"`
						Carryforward *carryforwardView `json:"carryforward,omitempty"`
						Error        string            `json:"error,omitempty"`
					}
					out := make([]result, len(results))
					for i, r := range results {
						out[i] = result{SiteID: r.SiteID.String(), Carryforward: toCarryforwardView(r.Carryforward)}
						if r.Err != nil {
							out[i].Error = r.Err.Error()
						}
					}
					return printJSON(cmd.OutOrStdout(), out)
				})
			}

			siteID, err := parseSite(siteFlag)
			if err != nil {
				return err
			}
			return rt.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				record, err := svc.Ledger.Reconcile(ctx, siteID, date)
				if err != nil {
					return err
				}
				if record == nil {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "nothing to carry forward")
					return err
				}
				return printJSON(cmd.OutOrStdout(), toCarryforwardView(record))
			})
		},
	}

	cmd.Flags().StringVar(&siteFlag, "site", "", "site UUID")
	cmd.Flags().StringVar(&dateFlag, "date", "", "day to close out, YYYY-MM-DD (required)")
	cmd.Flags().BoolVar(&all, "all", false, "reconcile every active site")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newBudgetCommand(rt *runtime) *cobra.Command {
	var siteFlag, managerFlag, dateFlag, amountFlag, category, description string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Enter a day's base budget and apply the pending carryforward",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			siteID, err := parseSite(siteFlag)
			if err != nil {
				return err
			}
			managerID, err := uuid.FromString(managerFlag)
			if err != nil {
				return fmt.Errorf("invalid --manager: %w", err)
			}
			date, err := parseDate("date", dateFlag)
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(amountFlag)
			if err != nil {
				return fmt.Errorf("invalid --amount: %w", err)
			}

			entry := ledger.BudgetEntry{
				SiteID:      siteID,
				ManagerID:   managerID,
				Date:        date,
				Amount:      amount,
				Category:    category,
				Description: description,
			}
			return rt.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				app, err := svc.Ledger.ApplyBudget(ctx, entry)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), toApplicationView(app))
			})
		},
	}

	cmd.Flags().StringVar(&siteFlag, "site", "", "site UUID (required)")
	cmd.Flags().StringVar(&managerFlag, "manager", "", "admin UUID (required)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "budget date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "positive base budget (required)")
	cmd.Flags().StringVar(&category, "category", "", "category, defaults to Budget")
	cmd.Flags().StringVar(&description, "description", "", "description")
	for _, name := range []string{"site", "manager", "date", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newPendingCommand(rt *runtime) *cobra.Command {
	var siteFlag, dateFlag string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show the carryforward a budget on the date would apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			siteID, err := parseSite(siteFlag)
			if err != nil {
				return err
			}
			date, err := parseDate("date", dateFlag)
			if err != nil {
				return err
			}
			return rt.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				record, err := svc.Ledger.Pending(ctx, siteID, date)
				if err != nil {
					return err
				}
				if record == nil {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "no pending carryforward")
					return err
				}
				return printJSON(cmd.OutOrStdout(), toCarryforwardView(record))
			})
		},
	}

	cmd.Flags().StringVar(&siteFlag, "site", "", "site UUID (required)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "prospective budget date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("site")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newDailyCommand(rt *runtime) *cobra.Command {
	var siteFlag, dateFlag string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show a site's totals for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			siteID, err := parseSite(siteFlag)
			if err != nil {
				return err
			}
			date, err := parseDate("date", dateFlag)
			if err != nil {
				return err
			}
			return rt.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				totals, err := svc.Ledger.Daily(ctx, siteID, date)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"siteID":             totals.SiteID.String(),
					"date":               totals.Date.String(),
					"inward":             totals.Inward.String(),
					"outward":            totals.Outward.String(),
					"carryforwardInward": totals.CarryforwardInward.String(),
					"net":                totals.Net().String(),
					"hasBudget":          totals.BudgetEntries > 0,
				})
			})
		},
	}

	cmd.Flags().StringVar(&siteFlag, "site", "", "site UUID (required)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "day, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("site")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newHistoryCommand(rt *runtime) *cobra.Command {
	var siteFlag, fromFlag, toFlag string
	var pendingOnly bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List carryforward records with totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := &carryforward.CarryforwardFilter{PendingOnly: pendingOnly, Limit: limit}
			if siteFlag != "" {
				siteID, err := parseSite(siteFlag)
				if err != nil {
					return err
				}
				filter.SiteID = &siteID
			}
			var err error
			if filter.From, err = parseOptionalDate("from", fromFlag); err != nil {
				return err
			}
			if filter.To, err = parseOptionalDate("to", toFlag); err != nil {
				return err
			}

			return rt.withService(cmd, func(ctx context.Context, svc *service.Service) error {
				history, err := svc.Ledger.History(ctx, filter)
				if err != nil {
					return err
				}
				records := make([]*carryforwardView, len(history.Carryforwards))
				for i, c := range history.Carryforwards {
					records[i] = toCarryforwardView(c)
				}
				months := make([]map[string]any, len(history.Months))
				for i, m := range history.Months {
					months[i] = map[string]any{"month": m.Month, "count": m.Count, "total": m.Total.String()}
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"carryforwards": records,
					"total":         history.Total.String(),
					"surplus":       history.Surplus.String(),
					"deficit":       history.Deficit.String(),
					"sites":         history.Sites,
					"months":        months,
				})
			})
		},
	}

	cmd.Flags().StringVar(&siteFlag, "site", "", "only this site")
	cmd.Flags().StringVar(&fromFlag, "from", "", "earliest day closed out, YYYY-MM-DD")
	cmd.Flags().StringVar(&toFlag, "to", "", "latest day closed out, YYYY-MM-DD")
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "only records not yet applied")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records, 0 for all")

	return cmd
}
