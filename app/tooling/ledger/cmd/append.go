package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/spf13/cobra"
)

var appendCmd = &cobra.Command{
	Use:   "append [payload...]",
	Short: "Mine a new block holding the payload strings.",
	Example: `  ledger append "Alice -> Bob: 10"
  ledger append "Bob -> Charlie: 5" "Charlie -> Dave: 2"`,
	RunE: appendRun,
}

func init() {
	rootCmd.AddCommand(appendCmd)
}

func appendRun(cmd *cobra.Command, args []string) error {
	nb := struct {
		Payload []string `json:"payload"`
	}{
		Payload: args,
	}

	// The node requires the field even when the payload is empty.
	if nb.Payload == nil {
		nb.Payload = []string{}
	}

	data, err := json.Marshal(nb)
	if err != nil {
		return err
	}

	var bd chain.BlockData
	if err := call(http.MethodPost, "/v1/blocks/append", bytes.NewReader(data), &bd); err != nil {
		return err
	}

	return printJSON(bd)
}
