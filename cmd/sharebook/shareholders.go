package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/ledger"
	"github.com/spf13/cobra"
)

func (a *app) shareholdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shareholders",
		Short: "Manage shareholders and their profit shares",
		Long: `Add, update, and deactivate shareholders. Active shareholders' percentages
can never add up to more than 100%.`,
	}

	cmd.AddCommand(a.listShareholdersCmd())
	cmd.AddCommand(a.getShareholderCmd())
	cmd.AddCommand(a.addShareholderCmd())
	cmd.AddCommand(a.updateShareholderCmd())
	cmd.AddCommand(a.deactivateShareholderCmd())
	cmd.AddCommand(a.shareholderTotalsCmd())

	return cmd
}

func (a *app) listShareholdersCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shareholders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				list := svc.ListShareholders
				if all {
					list = svc.ListAllShareholders
				}
				shareholders, err := list(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(shareholders) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No shareholders found. Use 'sharebook shareholders add' to create one."))
					return nil
				}

				table := cli.NewTable(out, "NAME", "EMAIL", "SHARE", "STATUS", "ID")
				for _, sh := range shareholders {
					table.Row(sh.Name, sh.Email, cli.FormatPercent(sh.SharePercentage), activeLabel(sh.IsActive), cli.SubtleStyle.Render(sh.ID))
				}
				return table.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include deactivated shareholders")
	return cmd
}

func (a *app) getShareholderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one shareholder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				sh, err := svc.GetShareholder(ctx, args[0])
				if err != nil {
					return err
				}

				body := fmt.Sprintf("Email:   %s\nShare:   %s\nStatus:  %s\nCreated: %s\nID:      %s",
					sh.Email,
					cli.FormatPercent(sh.SharePercentage),
					activeLabel(sh.IsActive),
					sh.CreatedAt.In(a.cfg.Location).Format(dateLayout),
					sh.ID)
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(sh.Name, body))
				return nil
			})
		},
	}
}

func (a *app) addShareholderCmd() *cobra.Command {
	var name, email, share string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a shareholder",
		Example: `  sharebook shareholders add --name "Amal Hassan" --email amal@example.com --share 40`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pct, err := parseAmount(share)
			if err != nil {
				return err
			}

			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				sh, err := svc.CreateShareholder(ctx, ledger.ShareholderInput{
					Name:            name,
					Email:           email,
					SharePercentage: pct,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s with %s (ID: %s)",
					sh.Name, cli.FormatPercent(sh.SharePercentage), sh.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "contact e-mail")
	cmd.Flags().StringVar(&share, "share", "", "share of net profit in percent")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("share")

	return cmd
}

func (a *app) updateShareholderCmd() *cobra.Command {
	var name, email, share string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a shareholder's name, e-mail or share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch ledger.ShareholderPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("email") {
				patch.Email = &email
			}
			if cmd.Flags().Changed("share") {
				pct, err := parseAmount(share)
				if err != nil {
					return err
				}
				patch.SharePercentage = &pct
			}

			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				sh, err := svc.UpdateShareholder(ctx, args[0], patch)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated "+sh.Name))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&email, "email", "", "new e-mail")
	cmd.Flags().StringVar(&share, "share", "", "new share in percent")
	return cmd
}

func (a *app) deactivateShareholderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Stop a shareholder from receiving new shares",
		Long:  `Deactivated shareholders keep their payout history; their percentage is freed for others.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				if err := svc.DeactivateShareholder(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deactivated shareholder "+args[0]))
				return nil
			})
		},
	}
}

func (a *app) shareholderTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show allocated and remaining percentage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				totals, err := svc.TotalPercentage(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Allocated: %s\nRemaining: %s\n",
					cli.BoldStyle.Render(cli.FormatPercent(totals.Total)),
					cli.FormatPercent(totals.Remaining))
				return nil
			})
		},
	}
}
