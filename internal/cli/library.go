package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brickyard/pkg/errors"
	pkgio "github.com/matzehuels/brickyard/pkg/io"
	"github.com/matzehuels/brickyard/pkg/library"
)

// libraryCommand manages named builds in the configured store.
func (c *CLI) libraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage saved builds",
		Long:    `Library saves builds under a name in the configured backend (file, sqlite, redis or mongo; see 'brickyard config show').`,
	}

	cmd.AddCommand(c.libraryListCommand())
	cmd.AddCommand(c.librarySaveCommand())
	cmd.AddCommand(c.libraryLoadCommand())
	cmd.AddCommand(c.libraryDeleteCommand())
	return cmd
}

// withLibrary opens the store, runs fn and closes the store.
func (c *CLI) withLibrary(ctx context.Context, fn func(library.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	spin := newSpinner(ctx, "Opening "+cfg.Store.Backend+" library")
	spin.Start()
	store, err := c.openLibrary(ctx, cfg)
	spin.Stop()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("close library", "error", err)
		}
	}()
	return fn(store)
}

func (c *CLI) libraryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withLibrary(ctx, func(store library.Store) error {
				infos, err := store.List(ctx)
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					printInfo("No saved builds")
					printNextStep("Save one with", "brickyard library save <name> <file>")
					return nil
				}
				t := newTable("Name", "Pieces", "Digest", "Updated")
				for _, info := range infos {
					t.Row(info.Name, strconv.Itoa(info.Count), shortDigest(info.Digest), info.UpdatedAt.Local().Format("2006-01-02 15:04"))
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.Render())
				return nil
			})
		},
	}
}

func (c *CLI) librarySaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "save <name> <file>",
		Short:   "Save a build file under a name",
		Example: `  brickyard library save castle castle.json`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pieces, err := pkgio.ImportJSON(args[1])
			if err != nil {
				return err
			}
			return c.withLibrary(ctx, func(store library.Store) error {
				tm := startTimer(c.Logger)
				entry, err := store.Put(ctx, args[0], pieces)
				if err != nil {
					return err
				}
				tm.done("build saved", "name", entry.Name)
				printSuccess("Saved %s (%d pieces)", StyleHighlight.Render(entry.Name), len(entry.Pieces))
				printDetail("digest %s", shortDigest(entry.Digest))
				return nil
			})
		},
	}
}

func (c *CLI) libraryLoadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Write a saved build to a file or stdout",
		Example: `  brickyard library load castle -o castle.json
  brickyard library load castle | jq length`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withLibrary(ctx, func(store library.Store) error {
				entry, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				if entry == nil {
					return errors.New(errors.ErrCodeBuildNotFound, "build %q not found", args[0])
				}
				if output == "" {
					return pkgio.WriteJSON(entry.Pieces, cmd.OutOrStdout())
				}
				if err := pkgio.ExportJSON(entry.Pieces, output); err != nil {
					return err
				}
				printSuccess("Loaded %s (%d pieces)", StyleHighlight.Render(entry.Name), len(entry.Pieces))
				printFile(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json or .json.zst)")
	return cmd
}

func (c *CLI) libraryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved build",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withLibrary(ctx, func(store library.Store) error {
				if err := store.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
