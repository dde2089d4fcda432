package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/ledger"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/spf13/cobra"
)

// reportRunner renders one report for a resolved range.
type reportRunner func(ctx context.Context, svc *ledger.Service, r model.DateRange, out io.Writer) error

func (a *app) reportCmd() *cobra.Command {
	var from, to string
	var limit int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Profit, trend and shareholder reports",
		Long: `Reports cover --from through --to inclusive. Both default to the
current calendar year.`,
		Example: `  sharebook report metrics
  sharebook report shares --from 2025-01-01 --to 2025-03-31`,
	}
	cmd.PersistentFlags().StringVar(&from, "from", "", "first day YYYY-MM-DD")
	cmd.PersistentFlags().StringVar(&to, "to", "", "last day YYYY-MM-DD")

	sub := func(use, short string, run reportRunner) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				r, err := a.parseRange(from, to)
				if err != nil {
					return err
				}
				return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
					out := cmd.OutOrStdout()
					fmt.Fprintln(out, cli.SubtitleStyle.Render(fmt.Sprintf("%s to %s",
						r.From.Format(dateLayout), r.To.Format(dateLayout))))
					return run(ctx, svc, r, out)
				})
			},
		}
	}

	top := sub("top", "Largest expense categories", func(ctx context.Context, svc *ledger.Service, r model.DateRange, out io.Writer) error {
		rows, err := svc.TopExpenseCategories(ctx, r, limit)
		if err != nil {
			return err
		}
		return a.printBreakdown(out, rows)
	})
	top.Flags().IntVarP(&limit, "limit", "l", 0, "number of categories (default 5)")

	cmd.AddCommand(sub("metrics", "Income, expenses, profit and margin", a.printMetrics))
	cmd.AddCommand(sub("summary", "Profit with the total paid out", a.printSummary))
	cmd.AddCommand(sub("trend", "Month-by-month income and expenses", a.printTrend))
	cmd.AddCommand(sub("breakdown", "Expenses by category", func(ctx context.Context, svc *ledger.Service, r model.DateRange, out io.Writer) error {
		rows, err := svc.ExpenseBreakdown(ctx, r)
		if err != nil {
			return err
		}
		return a.printBreakdown(out, rows)
	}))
	cmd.AddCommand(top)
	cmd.AddCommand(sub("shares", "Each shareholder's share, payouts and balance", a.printShares))

	return cmd
}

func (a *app) printMetrics(ctx context.Context, svc *ledger.Service, r model.DateRange, out io.Writer) error {
	m, err := svc.Metrics(ctx, r)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Income:           %s\nExpenses:         %s\nNet profit:       %s\nAvailable profit: %s\nProfit margin:    %s",
		a.money(m.TotalIncome),
		a.money(m.TotalExpenses),
		cli.BoldStyle.Render(a.money(m.NetProfit)),
		a.money(m.AvailableProfit),
		cli.FormatPercent(m.ProfitMargin))
	fmt.Fprintln(out, cli.RenderBox(cli.ChartIcon+" Metrics", body))
	return nil
}

func (a *app) printSummary(ctx context.Context, svc *ledger.Service, r model.DateRange, out io.Writer) error {
	s, err := svc.ProfitSummary(ctx, r)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Income:           %s\nExpenses:         %s\nNet profit:       %s\nPaid out:         %s\nAvailable profit: %s",
		a.money(s.TotalIncome),
		a.money(s.TotalExpenses),
		a.money(s.NetProfit),
		a.money(s.TotalDisbursements),
		cli.BoldStyle.Render(a.money(s.AvailableProfit)))
	fmt.Fprintln(out, cli.RenderBox(cli.MoneyIcon+" Profit summary", body))
	return nil
}

func (a *app) printTrend(ctx context.Context, svc *ledger.Service, r model.DateRange, out io.Writer) error {
	points, err := svc.MonthlyTrend(ctx, r)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No transactions in this range."))
		return nil
	}

	table := cli.NewTable(out, "MONTH", "INCOME", "EXPENSES", "PROFIT")
	for _, p := range points {
		profit := a.money(p.Profit)
		if p.Profit.IsNegative() {
			profit = cli.ExpenseStyle.Render(profit)
		}
		table.Row(p.Month, a.money(p.Income), a.money(p.Expenses), profit)
	}
	return table.Flush()
}

func (a *app) printBreakdown(out io.Writer, rows []model.CategoryBreakdown) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No expenses in this range."))
		return nil
	}

	table := cli.NewTable(out, "CATEGORY", "TOTAL", "SHARE")
	for _, row := range rows {
		table.Row(row.Category, a.money(row.Total), cli.FormatPercent(row.Percentage))
	}
	return table.Flush()
}

func (a *app) printShares(ctx context.Context, svc *ledger.Service, r model.DateRange, out io.Writer) error {
	shares, err := svc.ShareholderShares(ctx, r)
	if err != nil {
		return err
	}
	if len(shares) == 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render("No active shareholders."))
		return nil
	}

	table := cli.NewTable(out, "SHAREHOLDER", "SHARE", "ENTITLED", "PAID OUT", "REMAINING")
	for _, s := range shares {
		remaining := a.money(s.Remaining)
		if s.Remaining.IsNegative() {
			remaining = cli.WarningStyle.Render(remaining)
		}
		table.Row(s.ShareholderName, cli.FormatPercent(s.SharePercentage), a.money(s.ShareAmount), a.money(s.Disbursed), remaining)
	}
	return table.Flush()
}
