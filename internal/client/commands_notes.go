package client

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-note-keeper/models"
)

func (c *CLI) newCreateCommand() *cobra.Command {
	var draft models.NoteDraft

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			note, err := c.app.Services.Lifecycle.Create(cmd.Context(), draft)
			if err != nil {
				return fmt.Errorf("create note: %w", err)
			}
			return c.printSaved(cmd, "created", note.ID)
		},
	}

	cmd.Flags().StringVar(&draft.Title, "title", "", "Note title")
	cmd.Flags().StringVar(&draft.Content, "content", "", "Note content")
	cmd.Flags().StringVar(&draft.Category, "category", "", "Note category")
	cmd.Flags().StringSliceVar(&draft.Tags, "tag", nil, "Note tag (repeatable)")
	cmd.Flags().BoolVar(&draft.IsPinned, "pinned", false, "Pin the note")

	return cmd
}

func (c *CLI) newEditCommand() *cobra.Command {
	var (
		title, content, category string
		tags                     []string
		pinned                   bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit fields of an active note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update models.NoteUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				update.Title = &title
			}
			if flags.Changed("content") {
				update.Content = &content
			}
			if flags.Changed("category") {
				update.Category = &category
			}
			if flags.Changed("tag") {
				update.Tags = &tags
			}
			if flags.Changed("pinned") {
				update.IsPinned = &pinned
			}

			note, err := c.app.Services.Lifecycle.Update(cmd.Context(), args[0], update)
			if err != nil {
				return fmt.Errorf("edit note %s: %w", args[0], err)
			}
			return c.printSaved(cmd, "updated", note.ID)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags (repeatable, empty value clears)")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "Pin or unpin the note")

	return cmd
}

func (c *CLI) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show <id>",
		Short:       "Print one note as JSON",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{loadSyncAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := c.app.Services.Lifecycle.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("show note %s: %w", args[0], err)
			}
			return writeNotesJSON(cmd.OutOrStdout(), note)
		},
	}
}

func (c *CLI) newListCommand() *cobra.Command {
	var (
		trash    bool
		asJSON   bool
		category string
		tag      string
	)

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List active notes, pinned first",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{loadSyncAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			lifecycle := c.app.Services.Lifecycle
			list := lifecycle.ListActive
			if trash {
				list = lifecycle.ListTrash
			}

			notes, err := list(cmd.Context())
			if err != nil {
				return fmt.Errorf("list notes: %w", err)
			}

			notes = slices.DeleteFunc(notes, func(n models.Note) bool {
				if category != "" && n.Category != category {
					return true
				}
				return tag != "" && !slices.Contains(n.Tags, tag)
			})

			if asJSON {
				return writeNotesJSON(cmd.OutOrStdout(), notes)
			}
			return writeNotesTable(cmd.OutOrStdout(), notes)
		},
	}

	cmd.Flags().BoolVar(&trash, "trash", false, "List trashed notes instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().StringVar(&category, "category", "", "Filter notes by category")
	cmd.Flags().StringVar(&tag, "tag", "", "Filter notes by tag")

	return cmd
}

func (c *CLI) newTrashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trash <id>",
		Short: "Move a note to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Services.Lifecycle.Trash(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("trash note %s: %w", args[0], err)
			}
			return c.printSaved(cmd, "trashed", args[0])
		},
	}
}

func (c *CLI) newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a note from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Services.Lifecycle.Restore(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("restore note %s: %w", args[0], err)
			}
			return c.printSaved(cmd, "restored", args[0])
		},
	}
}

func (c *CLI) newPurgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge <id>",
		Short: "Permanently delete a trashed note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Services.Lifecycle.Purge(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("purge note %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "note %s purged\n", args[0])
			return nil
		},
	}
}

func (c *CLI) newEmptyTrashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "empty-trash",
		Short: "Permanently delete every trashed note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.app.Services.Lifecycle.EmptyTrash(cmd.Context())
			if err != nil {
				return fmt.Errorf("empty trash: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d notes purged\n", n)
			return nil
		},
	}
}

func (c *CLI) newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "categories",
		Short:       "List categories of active notes",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{loadSyncAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := c.app.Services.Lifecycle.Categories(cmd.Context())
			if err != nil {
				return fmt.Errorf("list categories: %w", err)
			}
			return writeLines(cmd.OutOrStdout(), categories)
		},
	}
}

func (c *CLI) newTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "tags",
		Short:       "List tags of active notes",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{loadSyncAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := c.app.Services.Lifecycle.Tags(cmd.Context())
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}
			return writeLines(cmd.OutOrStdout(), tags)
		},
	}
}

// printSaved waits for the background push of the mutation and reports the
// resulting sync state next to the note id.
func (c *CLI) printSaved(cmd *cobra.Command, verb, id string) error {
	c.app.Services.Reconciler.Wait()

	status, err := c.app.Services.Reconciler.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("get sync status: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "note %s %s (%s)\n", id, verb, status.State)
	return nil
}

func writeNotesJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeNotesTable(w io.Writer, notes []models.Note) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tTAGS\tPINNED\tUPDATED\tSYNCED")
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%t\n",
			n.ID,
			n.Title,
			n.Category,
			strings.Join(n.Tags, ","),
			n.IsPinned,
			time.UnixMilli(n.UpdatedAt).Format(time.DateTime),
			n.Synced,
		)
	}
	return tw.Flush()
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
