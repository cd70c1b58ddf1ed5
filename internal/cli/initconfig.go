package cli

import (
	"github.com/spf13/cobra"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Create the runtime configuration wiki page if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().InitConfig(cmd.Context())
	},
}
