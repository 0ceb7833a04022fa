// This program is a command line client for the ledger node.
package main

import "github.com/ardanlabs/powchain/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
