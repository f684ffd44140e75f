package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Andrew-Schwartz/typset-image/internal/backend"
	"github.com/Andrew-Schwartz/typset-image/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <equation-file>",
	Short: "Re-render an equation file whenever it changes",
	Long: `Watch renders the file immediately, then again after every save,
a live preview loop for use next to an editor. Combine with --out to keep
one output file up to date.`,
	Args: cobra.ExactArgs(1),
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
			Color:  colorFlag,
			Format: format,
			PPI:    ppiFlag,
		}

		w, err := watch.New(args[0], a.Render, backendFlag, req, outFlag)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return w.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&backendFlag, "backend", "b", "", "backend: latex or typst (default from config)")
	watchCmd.Flags().StringVarP(&colorFlag, "color", "c", "", "output color, named or hex (default from config)")
	watchCmd.Flags().StringVarP(&formatFlag, "format", "f", "svg", "output format: svg or png")
	watchCmd.Flags().IntVar(&ppiFlag, "ppi", 0, "pixels per inch for png output (default from config)")
	watchCmd.Flags().StringVarP(&outFlag, "out", "o", "", "copy the artifact to this path after each render")
}
