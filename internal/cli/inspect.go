package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brickyard/pkg/build"
	"github.com/matzehuels/brickyard/pkg/catalog"
	pkgio "github.com/matzehuels/brickyard/pkg/io"
	"github.com/matzehuels/brickyard/pkg/snap"
)

// report is the machine-readable form of inspect.
type report struct {
	Pieces       int                   `json:"pieces"`
	ByType       map[catalog.Type]int  `json:"byType"`
	ByColor      map[catalog.Color]int `json:"byColor"`
	MaxElevation float64               `json:"maxElevation"`
	Floating     []string              `json:"floating"`
}

func buildReport(pieces build.Pieces) report {
	st := build.Summarize(pieces)
	g := snap.NewEngine().Analyze(pieces)
	floating := g.Floating
	if floating == nil {
		floating = []string{}
	}
	return report{
		Pieces:       st.Count,
		ByType:       st.ByType,
		ByColor:      st.ByColor,
		MaxElevation: snap.MaxElevation(pieces),
		Floating:     floating,
	}
}

// inspectCommand summarises a build file.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarise a build file",
		Long:  `Inspect reads a build file and reports piece counts by type and colour, the height of the tower and any pieces left floating after their support was removed.`,
		Example: `  brickyard inspect castle.json
  brickyard inspect castle.json.zst --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pieces, err := pkgio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("build loaded", "file", args[0], "pieces", len(pieces))

			r := buildReport(pieces)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}
			writeReport(cmd.OutOrStdout(), args[0], pieces, r)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func writeReport(w io.Writer, name string, pieces build.Pieces, r report) {
	fmt.Fprintln(w, StyleTitle.Render(name))
	fmt.Fprintln(w, joinDim(
		fmt.Sprintf("%d pieces", r.Pieces),
		fmt.Sprintf("top at %s", strconv.FormatFloat(r.MaxElevation, 'f', 2, 64)),
		fmt.Sprintf("%d floating", len(r.Floating)),
	))
	if r.Pieces == 0 {
		return
	}

	st := build.Summarize(pieces)
	types := newTable("Type", "Count")
	for _, t := range st.Types() {
		types.Row(string(t), strconv.Itoa(st.ByType[t]))
	}
	fmt.Fprintln(w, types.Render())

	colors := newTable("", "Colour", "Count")
	for _, col := range catalog.Colors {
		if n := st.ByColor[col]; n > 0 {
			colors.Row(swatch(col), col.Name(), strconv.Itoa(n))
		}
	}
	fmt.Fprintln(w, colors.Render())

	for _, id := range r.Floating {
		fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render("floating: "+id))
	}
}
