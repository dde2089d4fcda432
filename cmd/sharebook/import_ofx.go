package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/common"
	"github.com/Veraticus/sharebook/internal/ledger"
	"github.com/Veraticus/sharebook/internal/model"
	"github.com/Veraticus/sharebook/internal/ofx"
	"github.com/spf13/cobra"
)

func (a *app) importOFXCmd() *cobra.Command {
	var (
		rulesPath  string
		dryRun     bool
		noSnapshot bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx <files...>",
		Short: "Import transactions from OFX/QFX bank statements",
		Long: `Import statement lines from OFX or QFX files exported from your bank.

Credits are recorded as income and debits as expenses. Each expense takes the
category of the first rule in the rules file whose match text appears in the
payee name, or the file's default_category. Entries that fail validation are
reported and skipped; everything else is saved in one transaction.`,
		Example: `  # Preview without saving
  sharebook transactions import-ofx --dry-run ~/Downloads/statement.qfx

  # Import every statement in a directory with a rules file
  sharebook transactions import-ofx --rules ~/.config/sharebook/rules.yaml ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			if rulesPath == "" {
				rulesPath = a.cfg.ImportRules
			}
			rules, err := ofx.LoadRules(rulesPath)
			if err != nil {
				return err
			}

			entries, err := readStatements(ctx, files)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No transactions found in any file"))
				return nil
			}
			inputs := rules.Inputs(entries)

			if dryRun {
				a.printImportPreview(cmd, inputs)
				return nil
			}

			return a.runImport(ctx, cmd, inputs, !noSnapshot)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "YAML category rules file (default: import.rules from config)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Preview import without saving")
	cmd.Flags().BoolVar(&noSnapshot, "no-snapshot", false, "Skip the automatic snapshot taken before importing")

	return cmd
}

func (a *app) runImport(ctx context.Context, cmd *cobra.Command, inputs []ledger.TransactionInput, snapshot bool) error {
	svc, store, err := a.initService(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Import")
	if snapshot {
		manager, err := store.NewSnapshotManager()
		if err != nil {
			return fmt.Errorf("failed to create snapshot manager: %w", err)
		}
		info, err := manager.AutoSnapshot(ctx, "import")
		if err != nil {
			return err
		}
		handler.SetHint("No changes were committed. Snapshot " + info.ID + " holds the ledger as it was before the import.")
	}
	ctx = handler.HandleInterrupts(ctx)
	defer handler.Stop()

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(inputs), "Importing")
	result, err := svc.ImportTransactions(ctx, inputs, cli.ProgressFunc(bar))
	if err != nil {
		if handler.WasInterrupted() {
			return context.Canceled
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", len(result.Created))))
	if len(result.Failed) > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d entries were skipped:", len(result.Failed))))
		for _, f := range result.Failed {
			fmt.Fprintf(out, "  #%d %s: %v\n", f.Index+1, f.Description, f.Err)
		}
	}
	return nil
}

func (a *app) printImportPreview(cmd *cobra.Command, inputs []ledger.TransactionInput) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%d transactions would be imported", len(inputs))))

	table := cli.NewTable(out, "DATE", "TYPE", "AMOUNT", "CATEGORY", "DESCRIPTION")
	for _, in := range inputs {
		table.Row(
			in.Date.In(a.cfg.Location).Format(dateLayout),
			in.Type.Label(),
			cli.FormatSignedMoney(in.Amount, a.cfg.Currency, in.Type == model.TransactionExpense),
			orDash(in.Category),
			in.Description,
		)
	}
	_ = table.Flush()
	fmt.Fprintln(out, cli.SubtleStyle.Render("Dry run complete - no data saved"))
}

// expandFiles resolves glob patterns; a pattern matching nothing must name an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
			continue
		}
		slog.Warn("No files found matching pattern", "pattern", pattern)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}

// readStatements parses every file, dropping lines whose account and FITID were already seen.
func readStatements(ctx context.Context, files []string) ([]ofx.Entry, error) {
	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var entries []ofx.Entry

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}

		added := 0
		for _, e := range parsed {
			key := e.Account + "/" + e.FITID
			if e.FITID != "" && seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, e)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(parsed),
			"added", added,
			"duplicates", len(parsed)-added)
	}

	return entries, ctx.Err()
}
