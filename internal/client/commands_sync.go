package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-note-keeper/models"
)

func (c *CLI) newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending notes, then pull remote changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := c.app.Services.Reconciler.SyncCycle(cmd.Context(), models.TriggerManual)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "pushed: %d accepted, %d rejected, %d superseded, %d offline\n",
				report.Push.Accepted, report.Push.Rejected, report.Push.Superseded, report.Push.Offline)
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			fmt.Fprintf(out, "pulled: %d fetched, %d adopted, %d kept\n",
				report.Pull.Fetched, len(report.Pull.Adopted), report.Pull.Kept)
			fmt.Fprintln(out, "sync completed successfully")
			return nil
		},
	}
}

func (c *CLI) newReplaceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replace",
		Short: "Discard the local store and download every remote note",
		Long: `replace deletes every local note, including edits that were never pushed,
and stores the remote authority's full set instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.app.Services.Reconciler.Replace(cmd.Context())
			if err != nil {
				return fmt.Errorf("replace failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d notes downloaded\n", n)
			return nil
		},
	}
}

func (c *CLI) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the synchronization state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := c.app.Services.Reconciler.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("get sync status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state: %s\n", status.State)
			fmt.Fprintf(out, "pending: %d\n", status.Pending)
			if !status.LastSyncAt.IsZero() {
				fmt.Fprintf(out, "last sync: %s\n", status.LastSyncAt.Format(time.DateTime))
			}
			if status.LastError != "" {
				fmt.Fprintf(out, "last error: %s\n", status.LastError)
			}
			return nil
		},
	}
}

func (c *CLI) newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep syncing in the background and print events from other tabs",
		Long: `watch syncs once on start, then on every sync interval (or on the shorter
retry interval while the remote authority is unreachable). Events
published by other tabs of the same profile are printed as they arrive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			job := c.app.Services.SyncJob

			var mu sync.Mutex
			out := cmd.OutOrStdout()
			c.app.Subscribe(func(evt models.Event) {
				line := c.describeEvent(ctx, evt)
				mu.Lock()
				fmt.Fprintln(out, line)
				mu.Unlock()
			})

			job.Trigger(models.TriggerLoad)
			job.Start(ctx, c.app.cfg.Workers.SyncInterval)

			<-ctx.Done()
			return nil
		},
	}
}

// describeEvent re-reads the store for what evt announced. Events carry only
// ids, the notes themselves live in the shared store.
func (c *CLI) describeEvent(ctx context.Context, evt models.Event) string {
	line := fmt.Sprintf("event: %s from %s", evt, evt.Origin)
	lifecycle := c.app.Services.Lifecycle

	switch evt.Type {
	case models.EventLocalUpdate, models.EventSyncSuccess:
		if evt.ID == "" {
			return line
		}
		note, err := lifecycle.Get(ctx, evt.ID)
		if err != nil {
			return line
		}
		return fmt.Sprintf("%s: %q (%s)", line, note.Title, note.State())
	case models.EventPullSuccess:
		notes, err := lifecycle.ListActive(ctx)
		if err != nil {
			return line
		}
		return fmt.Sprintf("%s: %d active notes", line, len(notes))
	}
	return line
}

func (c *CLI) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipAppAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.build)
			return nil
		},
	}
}
