package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/export"
	"github.com/Veraticus/sharebook/internal/ledger"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/spf13/cobra"
)

func (a *app) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Record and browse income and expenses",
	}

	cmd.AddCommand(a.addTransactionCmd())
	cmd.AddCommand(a.updateTransactionCmd())
	cmd.AddCommand(a.deleteTransactionCmd())
	cmd.AddCommand(a.listTransactionsCmd())
	cmd.AddCommand(a.exportTransactionsCmd())
	cmd.AddCommand(a.importOFXCmd())

	return cmd
}

func (a *app) addTransactionCmd() *cobra.Command {
	var kind, amount, category, description, date, notes string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Example: `  sharebook transactions add --type income --amount 1500 --description "March sales"
  sharebook transactions add --type expense --amount 400 --category Rent --description "Office rent" --date 2025-03-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txType, err := parseType(kind)
			if err != nil {
				return err
			}
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
				txn, err := svc.CreateTransaction(ctx, ledger.TransactionInput{
					Type:        txType,
					Amount:      amt,
					Category:    category,
					Description: description,
					Date:        when,
					Notes:       notes,
				})
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s of %s (ID: %s)",
					txn.Type, a.money(txn.Amount), txn.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "", "income or expense")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "positive amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "expense category name (expenses only)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the entry is for")
	cmd.Flags().StringVar(&date, "date", "", "entry date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&notes, "notes", "", "optional notes")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func (a *app) updateTransactionCmd() *cobra.Command {
	var amount, category, description, date, notes string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a transaction",
		Long: `Change any of amount, date, description, category and notes. The type of a
transaction cannot change. All given fields are applied together or not at all.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch ledger.TransactionPatch
			flags := cmd.Flags()

			if flags.Changed("amount") {
				amt, err := parseAmount(amount)
				if err != nil {
					return err
				}
				patch.Amount = &amt
			}
			if flags.Changed("date") {
				when, err := a.parseDate(date)
				if err != nil {
					return err
				}
				patch.Date = &when
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}

			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				txn, err := svc.UpdateTransaction(ctx, args[0], patch)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated transaction "+txn.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new expense category")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&date, "date", "", "new date YYYY-MM-DD")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes (empty clears them)")

	return cmd
}

func (a *app) deleteTransactionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				if err := svc.DeleteTransaction(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted transaction "+args[0]))
				return nil
			})
		},
	}
}

// queryFlags are the filters shared by list and export.
type queryFlags struct {
	kind, from, to, category, search string
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.kind, "type", "t", "", "only income or expense")
	cmd.Flags().StringVar(&q.from, "from", "", "earliest date YYYY-MM-DD")
	cmd.Flags().StringVar(&q.to, "to", "", "latest date YYYY-MM-DD")
	cmd.Flags().StringVarP(&q.category, "category", "c", "", "only this expense category")
	cmd.Flags().StringVarP(&q.search, "search", "s", "", "case-insensitive description search")
}

func (a *app) buildQuery(q queryFlags) (ledger.TransactionQuery, error) {
	query := ledger.TransactionQuery{Category: q.category, Search: q.search}

	if q.kind != "" {
		t, err := parseType(q.kind)
		if err != nil {
			return query, err
		}
		query.Type = &t
	}
	if q.from != "" {
		from, err := a.parseDate(q.from)
		if err != nil {
			return query, err
		}
		query.From = &from
	}
	if q.to != "" {
		to, err := a.parseDate(q.to)
		if err != nil {
			return query, err
		}
		to = endOfDay(to)
		query.To = &to
	}

	return query, nil
}

func (a *app) listTransactionsCmd() *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent transactions",
		Long: fmt.Sprintf(`List transactions, newest first. At most %d entries are read; --search
filters within those. Use export for the complete history.`, ledger.ListLimit),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := a.buildQuery(q)
			if err != nil {
				return err
			}

			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				txns, err := svc.ListTransactions(ctx, query)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(txns) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No transactions found. Use 'sharebook transactions add' to record one."))
					return nil
				}

				table := cli.NewTable(out, "DATE", "TYPE", "AMOUNT", "CATEGORY", "DESCRIPTION", "ID")
				for _, t := range txns {
					table.Row(
						t.Date.In(a.cfg.Location).Format(dateLayout),
						t.Type.Label(),
						cli.FormatSignedMoney(t.Amount, a.cfg.Currency, t.Type == model.TransactionExpense),
						orDash(t.Category),
						t.Description,
						cli.SubtleStyle.Render(t.ID),
					)
				}
				return table.Flush()
			})
		},
	}

	q.register(cmd)
	return cmd
}

func (a *app) exportTransactionsCmd() *cobra.Command {
	var (
		q      queryFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV",
		Long:  `Write every matching transaction as CSV with a UTF-8 byte order mark, ready for spreadsheets.`,
		Example: `  sharebook transactions export --from 2025-01-01 --to 2025-12-31 -o ledger-2025.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := a.buildQuery(q)
			if err != nil {
				return err
			}

			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				txns, err := svc.ListTransactionsForExport(ctx, query)
				if err != nil {
					return err
				}
				rows := export.TransactionRows(txns)

				if output == "" || output == "-" {
					return export.WriteCSV(cmd.OutOrStdout(), rows, export.Options{})
				}

				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}

				bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(rows), "Exporting")
				writeErr := export.WriteCSV(f, rows, export.Options{Progress: cli.ProgressFunc(bar)})
				closeErr := f.Close()
				if writeErr != nil {
					return writeErr
				}
				if closeErr != nil {
					return fmt.Errorf("failed to close %s: %w", output, closeErr)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(rows), output)))
				return nil
			})
		},
	}

	q.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
