package cli

import (
	"github.com/spf13/cobra"

	"github.com/Andrew-Schwartz/typset-image/internal/app"
	"github.com/Andrew-Schwartz/typset-image/internal/config"
	"github.com/Andrew-Schwartz/typset-image/internal/logger"
)

var (
	// cfgPath is the directory searched for config.yaml (if specified via flag)
	cfgPath string

	rootCmd = &cobra.Command{
		Use:   "typset-image",
		Short: "Render LaTeX and Typst equations to SVG or PNG",
		Long: `typset-image turns a math expression into an image by driving the
LaTeX (latex + dvisvgm + magick) or Typst toolchain, caching LaTeX renders
by equation hash so color changes never re-typeset.`,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "directory containing config.yaml (default is .)")
}

// loadApp builds the application container from config and flags.
// Callers own the returned App and must Shutdown it.
func loadApp() (*app.App, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.Misc.LogLevel)
	return app.Build(cfg)
}
