package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the available rendering backends",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		for _, b := range a.Render.Backends() {
			fmt.Printf("%s  %-6s  %s\n", b.Letter(), b.Name(), b.Stylized())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}
