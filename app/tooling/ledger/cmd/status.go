package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a summary of the chain.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status map[string]any
		if err := call(http.MethodGet, "/v1/chain/status", nil, &status); err != nil {
			return err
		}
		return printJSON(status)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
