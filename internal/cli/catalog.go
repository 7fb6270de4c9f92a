package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brickyard/pkg/catalog"
	"github.com/matzehuels/brickyard/pkg/errors"
)

// catalogCommand lists the piece catalog and the colour palette.
func (c *CLI) catalogCommand() *cobra.Command {
	var (
		group  string
		colors bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List piece types and palette colours",
		Example: `  brickyard catalog
  brickyard catalog --group plates
  brickyard catalog --colors`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if colors {
				fmt.Fprintln(out, renderPalette())
				return nil
			}
			types, err := catalogGroup(group)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderCatalog(types))
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "only list one group: bricks, plates or special")
	cmd.Flags().BoolVar(&colors, "colors", false, "list the colour palette instead")
	return cmd
}

func catalogGroup(name string) ([]catalog.Type, error) {
	switch name {
	case "":
		return catalog.All(), nil
	case "bricks":
		return catalog.Bricks, nil
	case "plates":
		return catalog.Plates, nil
	case "special":
		return catalog.Special, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown group %q (want bricks, plates or special)", name)
}

func renderCatalog(types []catalog.Type) string {
	t := newTable("Type", "Label", "Footprint", "Height", "Shape")
	for _, typ := range types {
		d := catalog.MustLookup(typ)
		t.Row(
			string(typ),
			d.Label(),
			fmt.Sprintf("%d × %d", d.Width, d.Depth),
			strconv.FormatFloat(d.HeightUnits(), 'g', -1, 64),
			string(d.Shape),
		)
	}
	return t.Render()
}

func renderPalette() string {
	t := newTable("", "Name", "Hex")
	for _, col := range catalog.Colors {
		t.Row(swatch(col), col.Name(), string(col))
	}
	return t.Render()
}
