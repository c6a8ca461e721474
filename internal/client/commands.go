package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/metrics"
	"github.com/MKhiriev/go-note-keeper/internal/tui"
	"github.com/MKhiriev/go-note-keeper/models"
)

// cli holds what the commands share: the parsed flags and the app built
// for the running command.
type cli struct {
	flags   *config.StructuredConfig
	logFile string
	build   models.AppBuildInfo
	factory AppFactory
	app     *App

	// out overrides stdout and stderr when set.
	out io.Writer
}

// Execute runs the "notes" command tree with args and releases the app the
// command opened, whatever the outcome.
func Execute(ctx context.Context, build models.AppBuildInfo, args []string) error {
	c := &cli{build: build}
	c.factory = c.defaultFactory
	return c.execute(ctx, args)
}

func (c *cli) execute(ctx context.Context, args []string) error {
	root := c.rootCommand()
	root.SetArgs(args)
	if c.out != nil {
		root.SetOut(c.out)
		root.SetErr(c.out)
	}

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		err = errors.Join(err, c.app.Close())
		c.app = nil
	}
	return err
}

func (c *cli) defaultFactory(ctx context.Context, cfg *config.ClientConfig) (*App, error) {
	return NewApp(ctx, cfg, logger.NewClientLogger("notes", c.logFile))
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "notes",
		Short: "Encrypted notes that keep working offline",
		Long: `notes keeps end-to-end encrypted notes in a local database and mirrors
them to a remote store whenever it is reachable. Changes made offline are
queued and replayed in order by "notes sync" or "notes watch".`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	c.flags = config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "Log file (default: notes.log next to the binary)")

	root.AddCommand(
		c.addCommand(),
		c.listCommand(),
		c.showCommand(),
		c.editCommand(),
		c.removeCommand(),
		c.syncCommand(),
		c.statusCommand(),
		c.watchCommand(),
		c.logoutCommand(),
		c.versionCommand(),
	)

	return root
}

// skipSetup marks commands that run without config or identity.
const skipSetup = "skip-setup"

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if _, ok := cmd.Annotations[skipSetup]; ok {
		return nil
	}

	cfg, err := config.GetClientConfig(c.flags)
	if err != nil {
		return err
	}

	c.app, err = c.factory(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	return c.app.Login()
}

func (c *cli) addCommand() *cobra.Command {
	var input models.NoteInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Example: `  notes add --title "groceries" --content "milk, eggs" --tags home,shopping`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := c.app.Unlock(ctx)
			if err != nil {
				return err
			}

			note, err := c.app.Services().NoteService.Create(ctx, sess, input)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderNote(note))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input.Title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&input.Content, "content", "m", "", "Note content")
	cmd.Flags().StringSliceVar(&input.Tags, "tags", nil, "Comma-separated tags")

	return cmd
}

func (c *cli) listCommand() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := c.app.Unlock(ctx)
			if err != nil {
				return err
			}

			offline = offline || !c.app.Online(ctx)
			notes, err := c.app.Services().NoteService.LoadNotes(ctx, sess, offline)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderNoteList(notes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Read the local database only")

	return cmd
}

func (c *cli) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.app.Unlock(ctx)
			if err != nil {
				return err
			}

			note, err := c.app.Services().NoteService.Get(ctx, sess, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderNote(note))
			return nil
		},
	}
}

func (c *cli) editCommand() *cobra.Command {
	var input models.NoteInput

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, content or tags of a note",
		Example: `  notes edit local-0192... --content "milk, eggs, bread"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.app.Unlock(ctx)
			if err != nil {
				return err
			}

			notes := c.app.Services().NoteService
			current, err := notes.Get(ctx, sess, args[0])
			if err != nil {
				return err
			}

			// unchanged flags keep the stored value
			flags := cmd.Flags()
			if !flags.Changed("title") {
				input.Title = current.Title
			}
			if !flags.Changed("content") {
				input.Content = current.Content
			}
			if !flags.Changed("tags") {
				input.Tags = current.Tags
			}

			note, err := notes.Update(ctx, sess, args[0], input)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderNote(note))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input.Title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&input.Content, "content", "m", "", "New content")
	cmd.Flags().StringSliceVar(&input.Tags, "tags", nil, "New comma-separated tags")

	return cmd
}

func (c *cli) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := c.app.Unlock(ctx)
			if err != nil {
				return err
			}

			if err = c.app.Services().NoteService.Delete(ctx, sess, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) syncCommand() *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay queued changes and refresh from the remote store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := c.app.Unlock(ctx)
			if err != nil {
				return err
			}

			syncService := c.app.Services().SyncService
			report, err := syncService.SyncWithRemote(ctx, sess)
			if err != nil {
				return err
			}

			remaining, err := syncService.PendingCount(ctx, sess)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSyncReport(report, remaining))

			if metricsFile != "" {
				if err = metrics.WriteTextfile(metricsFile); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the drain")

	return cmd
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and the number of queued changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c.app.Online(ctx)

			status, err := c.app.Status(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "owner:    %s\n", status.OwnerID)
			fmt.Fprintf(out, "online:   %t\n", status.Online)
			fmt.Fprintf(out, "queued:   %d\n", status.Queued)
			fmt.Fprintf(out, "degraded: %t\n", status.Degraded)
			return nil
		},
	}
}

func (c *cli) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep syncing in the background until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.ErrOrStderr(), "watching for changes, press ctrl+c to stop")
			return c.app.Watch(cmd.Context(), c.build)
		},
	}
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session key and wipe this account's local data",
		Long: `logout clears the cached session key and deletes every local note, queued
change and salt of the signed-in account. Changes still queued are lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out, local data wiped")
			return nil
		},
	}
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderBuildInfo(c.build))
			return nil
		},
	}
}
