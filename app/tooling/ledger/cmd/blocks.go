package cmd

import (
	"fmt"
	"net/http"

	"github.com/ardanlabs/powchain/foundation/blockchain/chain"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/spf13/cobra"
)

var (
	from   string
	to     string
	verify bool
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Print the blocks in the chain.",
	RunE:  blocksRun,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	blocksCmd.Flags().StringVarP(&from, "from", "f", "0", "First block to print.")
	blocksCmd.Flags().StringVarP(&to, "to", "o", "latest", "Last block to print.")
	blocksCmd.Flags().BoolVarP(&verify, "verify", "v", false, "Recalculate every hash locally, failures are reported relative to --from.")
}

func blocksRun(cmd *cobra.Command, args []string) error {
	var list struct {
		Length int               `json:"length"`
		Blocks []chain.BlockData `json:"blocks"`
	}

	if err := call(http.MethodGet, fmt.Sprintf("/v1/blocks/list/%s/%s", from, to), nil, &list); err != nil {
		return err
	}

	if err := printJSON(list.Blocks); err != nil {
		return err
	}

	if !verify {
		return nil
	}

	var status struct {
		Algorithm string `json:"algorithm"`
	}
	if err := call(http.MethodGet, "/v1/chain/status", nil, &status); err != nil {
		return err
	}

	hasher, err := digest.Parse(status.Algorithm)
	if err != nil {
		return err
	}

	blocks := make([]chain.Block, len(list.Blocks))
	for i, bd := range list.Blocks {
		blocks[i] = chain.ToBlock(bd)
	}

	if err := chain.ValidateBlocks(blocks, hasher, nil); err != nil {
		return fmt.Errorf("local verification failed: %w", err)
	}

	fmt.Printf("verified %d blocks locally\n", len(blocks))

	return nil
}
