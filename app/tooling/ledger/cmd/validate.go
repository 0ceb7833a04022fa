package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Ask the node to validate the chain.",
	RunE:  validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateRun(cmd *cobra.Command, args []string) error {
	var v struct {
		Valid  bool    `json:"valid"`
		Index  *uint64 `json:"index"`
		Reason string  `json:"reason"`
	}

	if err := call(http.MethodGet, "/v1/chain/validate", nil, &v); err != nil {
		return err
	}

	if v.Valid {
		fmt.Println("Is blockchain valid? Yes")
		return nil
	}

	fmt.Println("Is blockchain valid? No")
	if v.Index != nil {
		fmt.Printf("Block %d failed: %s\n", *v.Index, v.Reason)
	}

	return nil
}
