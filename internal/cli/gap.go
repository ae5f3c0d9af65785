package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"widealign/pkg/errors"
	"widealign/pkg/layout"
)

// gapCommand creates the gap command, a one-shot calculator that runs the
// real store against widths given on the command line.
func (c *CLI) gapCommand() *cobra.Command {
	var (
		lineWidth float64
		viewWidth float64
	)

	cmd := &cobra.Command{
		Use:   "gap [width...]",
		Short: "Compute left gaps for the given wrapper widths",
		Long: `Gap computes the horizontal offset that centers each given wrapper width
against the line width, clamped so the element never extends left of the
view. One row is printed per width.`,
		Example: `  widealign gap --line 400 --view 1000 300 700 1400`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			widths := make([]float64, 0, len(args))
			for _, arg := range args {
				w, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return errors.New(errors.ErrCodeInvalidInput, "width %q is not a number", arg)
				}
				widths = append(widths, w)
			}

			store := layout.New(func() (float64, error) { return lineWidth, nil })
			if err := store.SetViewWidth(viewWidth); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  line=%s view=%s\n",
				styleTitle.Render("left gaps"),
				styleNumber.Render(formatWidth(lineWidth)),
				styleNumber.Render(formatWidth(viewWidth)))
			for i, w := range widths {
				id := layout.EntityID("w" + strconv.Itoa(i))
				if err := store.SetWrapperWidth(id, w); err != nil {
					return err
				}
				gap, err := store.LeftGap(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s %s %s %s\n",
					styleDim.Render("width"),
					styleValue.Render(fmt.Sprintf("%8s", formatWidth(w))),
					styleDim.Render("gap"),
					styleNumber.Render(fmt.Sprintf("%8s", formatWidth(gap))))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lineWidth, "line", 400, "width of one line of normal content")
	cmd.Flags().Float64Var(&viewWidth, "view", 1000, "width of the content column, excluding padding")

	return cmd
}

// formatWidth renders a pixel value without a trailing ".0" for whole numbers.
func formatWidth(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
