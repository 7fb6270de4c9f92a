package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/brickyard/pkg/io"
	"github.com/matzehuels/brickyard/pkg/snap"
)

// supportCommand renders which pieces carry which.
func (c *CLI) supportCommand() *cobra.Command {
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "support <file>",
		Short: "Render the support graph of a build",
		Long: `Support writes the support graph of a build as Graphviz DOT, or as SVG when the output ends in .svg.
Edges run from each carrier to the pieces resting on it; floating pieces are outlined with dashes.`,
		Example: `  brickyard support castle.json
  brickyard support castle.json -o castle.svg --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			pieces, err := pkgio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			g := snap.NewEngine().Analyze(pieces)
			logger.Debug("support graph", "pieces", len(g.Pieces), "edges", len(g.Edges), "floating", len(g.Floating))

			dot := snap.ToDOT(g, snap.DOTOptions{Detailed: detailed})
			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), dot)
				return err
			}

			data := []byte(dot)
			if strings.EqualFold(filepath.Ext(output), ".svg") {
				spin := newSpinner(ctx, "Rendering SVG")
				spin.Start()
				tm := startTimer(logger)
				data, err = snap.RenderSVG(ctx, dot)
				spin.Stop()
				if err != nil {
					return err
				}
				tm.done("svg rendered", "bytes", len(data))
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Support graph written")
			printFile(output)
			if n := len(g.Floating); n > 0 {
				printWarning("%d floating pieces", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot or .svg); stdout when empty")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include piece positions in labels")
	return cmd
}
