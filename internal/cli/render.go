package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Andrew-Schwartz/typset-image/internal/backend"
	"github.com/Andrew-Schwartz/typset-image/internal/render"
)

var (
	backendFlag string
	colorFlag   string
	formatFlag  string
	ppiFlag     int
	outFlag     string
)

var renderCmd = &cobra.Command{
	Use:   "render [equation]",
	Short: "Render an equation to SVG or PNG",
	Example: `  # Typst (default backend), default color
  typset-image render "x^2 + y^2 = r^2"

  # LaTeX backend, red PNG at 600 ppi, copied next to the shell
  typset-image render -b latex -c red -f png --ppi 600 -o eq.png "\frac{1}{2}"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		format, err := backend.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		req := backend.Request{
			Equation: strings.Join(args, " "),
			Color:    colorFlag,
			Format:   format,
			PPI:      ppiFlag,
		}

		outcome := <-a.Render.RenderAsync(cmd.Context(), backendFlag, req)
		if outcome.Err != nil {
			return outcome.Err
		}

		fmt.Println(outcome.Result.Artifact)

		if outFlag != "" {
			if err := render.CopyArtifact(outcome.Result.Artifact, outFlag); err != nil {
				return err
			}
			fmt.Println(outFlag)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&backendFlag, "backend", "b", "", "backend: latex or typst (default from config)")
	renderCmd.Flags().StringVarP(&colorFlag, "color", "c", "", "output color, named or hex (default from config)")
	renderCmd.Flags().StringVarP(&formatFlag, "format", "f", "svg", "output format: svg or png")
	renderCmd.Flags().IntVar(&ppiFlag, "ppi", 0, "pixels per inch for png output (default from config)")
	renderCmd.Flags().StringVarP(&outFlag, "out", "o", "", "copy the artifact to this path")
}
