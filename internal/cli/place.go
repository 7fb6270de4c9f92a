package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/controller"
	"github.com/matzehuels/brickyard/pkg/errors"
	pkgio "github.com/matzehuels/brickyard/pkg/io"
	"github.com/matzehuels/brickyard/pkg/raycast"
)

type placeOptions struct {
	pieceType string
	color     string
	at        []string
	turns     int
	create    bool
	output    string
}

// placeCommand drops pieces into a build file from above, the way a click
// on the top-down view would.
func (c *CLI) placeCommand() *cobra.Command {
	var opts placeOptions

	cmd := &cobra.Command{
		Use:   "place <file>",
		Short: "Place pieces into a build file",
		Long: `Place drops one piece per --at position into the build, looking straight down.
Each piece snaps to the grid and lands on the highest surface beneath it, exactly as in the interactive builder.`,
		Example: `  brickyard place tower.json --create --type 2x4 --at 0,0
  brickyard place tower.json --type plate-1x1 --color blue --at 0.5,0.5 --at 0.5,1.5
  brickyard place tower.json --type 1x2 --rotate 1 --at 2.3,5.7 -o out.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return runPlace(cmd, args[0], opts, newController(cfg, nil, controller.Options{}))
		},
	}

	cmd.Flags().StringVarP(&opts.pieceType, "type", "t", "", "piece type (see 'brickyard catalog')")
	cmd.Flags().StringVarP(&opts.color, "color", "c", "", "palette colour name or hex")
	cmd.Flags().StringArrayVar(&opts.at, "at", nil, "world x,z to drop a piece at (repeatable)")
	cmd.Flags().IntVarP(&opts.turns, "rotate", "r", 0, "quarter turns to apply before placing")
	cmd.Flags().BoolVar(&opts.create, "create", false, "start a new build if the file does not exist")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the result here instead of <file>")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func runPlace(cmd *cobra.Command, path string, opts placeOptions, ctrl *controller.Controller) error {
	logger := loggerFromContext(cmd.Context())

	pieces, err := pkgio.ImportJSON(path)
	switch {
	case errors.Is(err, errors.ErrCodeFileNotFound) && opts.create:
		pieces = build.Pieces{}
	case err != nil:
		return err
	}
	ctrl.Import(pieces)

	if opts.pieceType != "" {
		t, err := catalog.ParseType(opts.pieceType)
		if err != nil {
			return err
		}
		if err := ctrl.SetActiveType(t); err != nil {
			return err
		}
	}
	if opts.color != "" {
		col, err := catalog.ParseColor(opts.color)
		if err != nil {
			return err
		}
		if err := ctrl.SetActiveColor(col); err != nil {
			return err
		}
	}
	for range ((opts.turns % 4) + 4) % 4 {
		ctrl.Rotate()
	}

	placed := 0
	for _, pos := range opts.at {
		x, z, err := parseXZ(pos)
		if err != nil {
			return err
		}
		cm, ok := ctrl.Place(raycast.At(x, z, ctrl.Live()))
		if !ok {
			printWarning("nothing to place on at %s", pos)
			continue
		}
		placed++
		logger.Debug("piece placed", "id", cm.Piece.ID, "contact", cm.Contact)
		printSuccess("%s at (%s) on %s", cm.Piece.Type, formatPosition(cm.Piece.Position), cm.Contact)
	}

	out := opts.output
	if out == "" {
		out = path
	}
	if err := pkgio.ExportJSON(ctrl.Pieces(), out); err != nil {
		return err
	}
	printInfo("%d of %d placed, %d pieces total", placed, len(opts.at), len(ctrl.Live()))
	printFile(out)
	return nil
}

// parseXZ parses "x,z".
func parseXZ(s string) (x, z float64, err error) {
	xs, zs, ok := strings.Cut(s, ",")
	if ok {
		x, err = strconv.ParseFloat(strings.TrimSpace(xs), 64)
	}
	if ok && err == nil {
		z, err = strconv.ParseFloat(strings.TrimSpace(zs), 64)
	}
	if !ok || err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "position %q must be x,z", s)
	}
	return x, z, nil
}

func formatPosition(p [3]float64) string {
	return fmt.Sprintf("%g, %g, %g", p[0], p[1], p[2])
}
