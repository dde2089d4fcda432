package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/ledger"
	"github.com/spf13/cobra"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long:  `List, add, update, and deactivate the categories expenses are filed under.`,
	}

	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.updateCategoryCmd())
	cmd.AddCommand(a.deactivateCategoryCmd())
	cmd.AddCommand(a.seedCategoriesCmd())

	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expense categories",
		Long:  `Display active expense categories with their descriptions. --all includes deactivated ones.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				list := svc.ListCategories
				if all {
					list = svc.ListAllCategories
				}
				categories, err := list(ctx)
				if err != nil {
					return fmt.Errorf("failed to get categories: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(categories) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'sharebook categories seed' to add the defaults."))
					return nil
				}

				table := cli.NewTable(out, "NAME", "DESCRIPTION", "STATUS", "ID")
				for _, cat := range categories {
					desc := cat.Description
					if desc == "" {
						desc = cli.SubtleStyle.Render("(no description)")
					}
					table.Row(cat.Name, desc, activeLabel(cat.IsActive), cli.SubtleStyle.Render(cat.ID))
				}
				return table.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include deactivated categories")
	return cmd
}

func (a *app) addCategoryCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				category, err := svc.CreateCategory(ctx, args[0], description)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (ID: %s)", category.Name, category.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "what belongs in this category")
	return cmd
}

func (a *app) updateCategoryCmd() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category or change its description",
		Long: `Rename a category or change its description. Existing expenses keep the
category name they were recorded with.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch ledger.CategoryPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}

			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				category, err := svc.UpdateCategory(ctx, args[0], patch)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %q", category.Name)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func (a *app) deactivateCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Hide a category from new expenses",
		Long:  `Deactivated categories stay on existing expenses but cannot be used for new ones. The name becomes free for reuse.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				if err := svc.DeactivateCategory(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deactivated category "+args[0]))
				return nil
			})
		},
	}
}

func (a *app) seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the default expense categories",
		Long:  `Add the built-in categories (Rent, Utilities, Salaries, ...). Names that already exist are skipped.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *ledger.Service) error {
				inserted, err := svc.SeedDefaultCategories(ctx)
				if err != nil {
					return err
				}
				if inserted == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("All default categories already exist"))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %d default categories", inserted)))
				return nil
			})
		},
	}
}
