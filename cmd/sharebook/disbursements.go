package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/ledger"
	"github.com/Veraticus/sharebook/internal/service"
	"github.com/spf13/cobra"
)

func (a *app) disbursementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "disbursements",
		Aliases: []string{"payouts"},
		Short:   "Record profit payouts to shareholders",
	}

	cmd.AddCommand(a.listDisbursementsCmd())
	cmd.AddCommand(a.addDisbursementCmd())
	cmd.AddCommand(a.deleteDisbursementCmd())

	return cmd
}

func (a *app) listDisbursementsCmd() *cobra.Command {
	var shareholderID, period, from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := service.DisbursementFilter{ShareholderID: shareholderID, Period: period}
			if from != "" {
				start, err := a.parseDate(from)
				if err != nil {
					return err
				}
				filter.From = &start
			}
			if to != "" {
				end, err := a.parseDate(to)
				if err != nil {
					return err
				}
				end = endOfDay(end)
				filter.To = &end
			}

			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				payouts, err := svc.ListDisbursements(ctx, filter)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(payouts) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No disbursements found."))
					return nil
				}

				table := cli.NewTable(out, "DATE", "SHAREHOLDER", "AMOUNT", "PERIOD", "NOTES", "ID")
				for _, d := range payouts {
					table.Row(
						d.Date.In(a.cfg.Location).Format(dateLayout),
						d.ShareholderName,
						a.money(d.Amount),
						d.Period,
						orDash(d.Notes),
						cli.SubtleStyle.Render(d.ID),
					)
				}
				return table.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&shareholderID, "shareholder", "", "only payouts to this shareholder id")
	cmd.Flags().StringVar(&period, "period", "", "only payouts for this period label")
	cmd.Flags().StringVar(&from, "from", "", "earliest date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "latest date YYYY-MM-DD")
	return cmd
}

func (a *app) addDisbursementCmd() *cobra.Command {
	var shareholderID, amount, date, period, notes string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record a payout",
		Example: `  sharebook disbursements add --shareholder <id> --amount 2500 --period 2025-Q1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			when := time.Now().In(a.cfg.Location)
			if date != "" {
				if when, err = a.parseDate(date); err != nil {
					return err
				}
			}

			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				d, err := svc.CreateDisbursement(ctx, ledger.DisbursementInput{
					ShareholderID: shareholderID,
					Amount:        amt,
					Date:          when,
					Period:        period,
					Notes:         notes,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded payout of %s for %s (ID: %s)",
					a.money(d.Amount), d.Period, d.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&shareholderID, "shareholder", "", "shareholder id")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount paid out")
	cmd.Flags().StringVar(&date, "date", "", "payout date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&period, "period", "", "period the payout covers, e.g. 2025-Q1")
	cmd.Flags().StringVar(&notes, "notes", "", "optional notes")
	_ = cmd.MarkFlagRequired("shareholder")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("period")

	return cmd
}

func (a *app) deleteDisbursementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a payout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				if err := svc.DeleteDisbursement(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted disbursement "+args[0]))
				return nil
			})
		},
	}
}
