package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
)

const (
	// skipAppAnnotation marks commands that run without opening the local store.
	skipAppAnnotation = "skip-app"

	// loadSyncAnnotation marks read commands that sync once before reading.
	loadSyncAnnotation = "load-sync"
)

// CLI is the note client command line. Every invocation opens its own App
// and closes it, waiting for background pushes, when the command returns.
type CLI struct {
	root  *cobra.Command
	flags *config.StructuredConfig
	build models.AppBuildInfo

	remote adapter.RemoteAuthority
	logger *logger.Logger

	app *App
}

// Option customizes a CLI.
type Option func(*CLI)

// WithRemote replaces the HTTP remote authority.
func WithRemote(remote adapter.RemoteAuthority) Option {
	return func(c *CLI) { c.remote = remote }
}

// WithLogger replaces the file logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *CLI) { c.logger = log }
}

func NewCLI(build models.AppBuildInfo, opts ...Option) *CLI {
	c := &CLI{build: build}
	for _, opt := range opts {
		opt(c)
	}

	c.root = &cobra.Command{
		Use:   "note",
		Short: "Offline-first notes synchronized with a remote authority",
		Long: `note keeps every note in a local store first and synchronizes it with the
remote authority in the background. Concurrent edits are resolved by
last-writer-wins on the note's update time.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.openApp,
	}
	c.flags = config.RegisterClientFlags(c.root.PersistentFlags())

	c.root.AddCommand(
		c.newCreateCommand(),
		c.newEditCommand(),
		c.newShowCommand(),
		c.newListCommand(),
		c.newTrashCommand(),
		c.newRestoreCommand(),
		c.newPurgeCommand(),
		c.newEmptyTrashCommand(),
		c.newCategoriesCommand(),
		c.newTagsCommand(),
		c.newSyncCommand(),
		c.newReplaceCommand(),
		c.newStatusCommand(),
		c.newWatchCommand(),
		c.newVersionCommand(),
	)

	return c
}

// Run executes args and releases the App opened for the command.
func (c *CLI) Run(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)

	if c.app != nil {
		err = errors.Join(err, c.app.Close())
		c.app = nil
	}
	return err
}

// Root exposes the command tree, mainly to redirect its output.
func (c *CLI) Root() *cobra.Command {
	return c.root
}

func (c *CLI) openApp(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipAppAnnotation] != "" {
		return nil
	}

	cfg, err := config.GetClientConfig(c.flags)
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}

	log := c.logger
	if log == nil {
		log = logger.NewClientLogger("note-client", cfg.LogPath)
	}

	c.app, err = NewApp(cmd.Context(), cfg, c.remote, log)
	if err != nil {
		return fmt.Errorf("init client app error: %w", err)
	}

	if cmd.Annotations[loadSyncAnnotation] != "" {
		c.loadSync(cmd.Context())
	}
	return nil
}

// loadSync runs the sync cycle a freshly opened client owes the store.
// Failures leave the local copy as it is: reads work offline.
func (c *CLI) loadSync(ctx context.Context) {
	if _, err := c.app.Services.Reconciler.SyncCycle(ctx, models.TriggerLoad); err != nil {
		c.app.logger.Warn().Err(err).Str("func", "CLI.loadSync").Msg("load-time sync failed, reading local notes")
	}
}
