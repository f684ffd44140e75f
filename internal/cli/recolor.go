package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Andrew-Schwartz/typset-image/internal/backend"
)

var recolorCmd = &cobra.Command{
	Use:   "recolor <cache-dir> <color>",
	Short: "Derive a recolored SVG from a rendered LaTeX cache directory",
	Long: `Recolor swaps the fill color of an already typeset equation without
rerunning latex. It only works on LaTeX cache directories, which keep the
colorless eq.svg intermediate; Typst renders are recompiled instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		artifact, err := a.Render.Recolor(cmd.Context(), backend.KindLaTeX, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(artifact)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recolorCmd)
}
