package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage database snapshots",
		Long: `Create, list, restore, and delete database snapshots.

Snapshots save the whole ledger before risky changes so it can be put back
exactly as it was. An automatic snapshot is taken before every OFX import.`,
		Example: `  # Snapshot before year-end corrections
  sharebook snapshot create --tag pre-closing

  # List all snapshots
  sharebook snapshot list

  # Restore from a snapshot
  sharebook snapshot restore pre-closing`,
	}

	cmd.AddCommand(a.createSnapshotCmd())
	cmd.AddCommand(a.listSnapshotsCmd())
	cmd.AddCommand(a.restoreSnapshotCmd())
	cmd.AddCommand(a.deleteSnapshotCmd())

	return cmd
}

// withSnapshots opens storage and a snapshot manager on it.
func (a *app) withSnapshots(cmd *cobra.Command, fn func(ctx context.Context, manager *storage.SnapshotManager) error) error {
	ctx := cmd.Context()

	store, err := a.initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager, err := store.NewSnapshotManager()
	if err != nil {
		return fmt.Errorf("failed to create snapshot manager: %w", err)
	}
	return fn(ctx, manager)
}

func (a *app) createSnapshotCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSnapshots(cmd, func(ctx context.Context, manager *storage.SnapshotManager) error {
				info, err := manager.Create(ctx, tag, description)
				if err != nil {
					return fmt.Errorf("failed to create snapshot: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s Created snapshot %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					formatFileSize(info.FileSize))
				if info.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", info.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Snapshot name (auto-generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the snapshot")
	return cmd
}

func (a *app) listSnapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSnapshots(cmd, func(ctx context.Context, manager *storage.SnapshotManager) error {
				snapshots, err := manager.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list snapshots: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(snapshots) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No snapshots found."))
					return nil
				}

				now := time.Now()
				table := cli.NewTable(out, "NAME", "CREATED", "SIZE", "TRANSACTIONS", "SHAREHOLDERS", "DISBURSEMENTS", "TYPE")
				for _, s := range snapshots {
					typeLabel := "manual"
					if s.IsAuto {
						typeLabel = "auto"
					}
					table.Row(
						cli.InfoStyle.Render(s.ID),
						formatRelativeTime(s.CreatedAt, now),
						formatFileSize(s.FileSize),
						fmt.Sprint(s.Transactions),
						fmt.Sprint(s.Shareholders),
						fmt.Sprint(s.Disbursements),
						cli.SubtitleStyle.Render(typeLabel),
					)
				}
				return table.Flush()
			})
		},
	}
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (y/N) ", question)
	var response string
	_, _ = fmt.Fscanln(in, &response)
	return strings.HasPrefix(strings.ToLower(response), "y")
}

func (a *app) restoreSnapshotCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Restore the database from a snapshot",
		Long:  `Replace the current database with a snapshot. Everything recorded since the snapshot is lost.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withSnapshots(cmd, func(ctx context.Context, manager *storage.SnapshotManager) error {
				info, err := manager.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to get snapshot info: %w", err)
				}

				out := cmd.OutOrStdout()
				if !force {
					fmt.Fprintf(out, "%s This will replace your current database with snapshot %s.\n",
						cli.WarningStyle.Render(cli.WarningIcon),
						cli.InfoStyle.Render(id))
					fmt.Fprintf(out, "  Created: %s\n", info.CreatedAt.In(a.cfg.Location).Format("2006-01-02 15:04:05"))
					if info.Description != "" {
						fmt.Fprintf(out, "  Description: %s\n", info.Description)
					}
					if !confirm(cmd.InOrStdin(), out, "\nContinue?") {
						fmt.Fprintln(out, cli.SubtitleStyle.Render("Restore cancelled."))
						return nil
					}
				}

				if err := manager.Restore(ctx, id); err != nil {
					return fmt.Errorf("failed to restore snapshot: %w", err)
				}

				fmt.Fprintf(out, "%s Restored from snapshot %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func (a *app) deleteSnapshotCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <snapshot-id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withSnapshots(cmd, func(ctx context.Context, manager *storage.SnapshotManager) error {
				info, err := manager.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to get snapshot info: %w", err)
				}

				out := cmd.OutOrStdout()
				if !force {
					fmt.Fprintf(out, "%s This will permanently delete snapshot %s (%s).\n",
						cli.WarningStyle.Render(cli.WarningIcon),
						cli.InfoStyle.Render(id),
						formatFileSize(info.FileSize))
					if !confirm(cmd.InOrStdin(), out, "\nContinue?") {
						fmt.Fprintln(out, cli.SubtitleStyle.Render("Deletion cancelled."))
						return nil
					}
				}

				if err := manager.Delete(ctx, id); err != nil {
					return fmt.Errorf("failed to delete snapshot: %w", err)
				}

				fmt.Fprintf(out, "%s Deleted snapshot %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		if minutes := int(duration.Minutes()); minutes != 1 {
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		return "1 minute ago"
	case duration < 24*time.Hour:
		if hours := int(duration.Hours()); hours != 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	case duration < 7*24*time.Hour:
		if days := int(duration.Hours() / 24); days != 1 {
			return fmt.Sprintf("%d days ago", days)
		}
		return "yesterday"
	default:
		return t.Format("2006-01-02 15:04")
	}
}
