package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/config"
	"github.com/matzehuels/brickyard/pkg/controller"
	"github.com/matzehuels/brickyard/pkg/errors"
	pkgio "github.com/matzehuels/brickyard/pkg/io"
	"github.com/matzehuels/brickyard/pkg/library"
)

// playCommand opens the interactive terminal builder.
func (c *CLI) playCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Build interactively in the terminal",
		Long: `Play opens a top-down view of the baseplate. Move the cursor with the arrow keys or the mouse; the outline shows where the active piece would snap.

With a file argument the build is loaded from it (if it exists) and ctrl+s writes it back. With --name the build is loaded from and saved to the library instead.`,
		Example: `  brickyard play
  brickyard play castle.json
  brickyard play --name castle`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			var file string
			if len(args) == 1 {
				file = args[0]
			}
			if file != "" && name != "" {
				return errors.New(errors.ErrCodeInvalidInput, "pass either a file or --name, not both")
			}
			return c.runPlay(cmd.Context(), cfg, file, name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "load from and save to this library entry")
	return cmd
}

func (c *CLI) runPlay(ctx context.Context, cfg config.Config, file, name string) error {
	logger := loggerFromContext(ctx)

	var (
		pieces build.Pieces
		save   saveFunc
		store  library.Store
		err    error
	)
	switch {
	case file != "":
		pieces, err = pkgio.ImportJSON(file)
		if errors.Is(err, errors.ErrCodeFileNotFound) {
			pieces, err = build.Pieces{}, nil
		}
		if err != nil {
			return err
		}
		save = func(ps build.Pieces) (string, error) {
			return file, pkgio.ExportJSON(ps, file)
		}
	case name != "":
		store, err = c.openLibrary(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		entry, err := store.Get(ctx, name)
		if err != nil {
			return err
		}
		if entry != nil {
			pieces = entry.Pieces
		}
		save = func(ps build.Pieces) (string, error) {
			if _, err := store.Put(ctx, name, ps); err != nil {
				return "", err
			}
			return "library:" + name, nil
		}
	}

	ctrl := newController(cfg, pieces, controller.Options{})
	ctrl.AddListener(controller.ListenerFunc(func(cm controller.Commit) {
		logger.Debug("piece placed", "id", cm.Piece.ID, "type", cm.Piece.Type, "contact", cm.Contact)
	}))

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.TUI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	model := NewBuilderModel(ctrl, cfg.TUI.Extent, cfg.Builder.FrameRate, save)
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("builder: %w", err)
	}

	st := build.Summarize(ctrl.Live())
	printSuccess("Session ended with %s pieces", StyleNumber.Render(fmt.Sprint(st.Count)))
	if save == nil && st.Count > 0 {
		printWarning("build was not saved")
		printNextStep("Keep your work next time with", "brickyard play <file>")
	}
	return nil
}
