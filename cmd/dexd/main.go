// Command dexd is a minimal demonstration CLI for the spotdex
// dispatch shell: it wires an in-memory token ledger and keeper
// together and exposes create-pair, place-order, and serve-feed as
// Cobra subcommands. It is not a consensus node — there is no
// persistence across invocations, matching spec.md's non-goal on
// networking and transaction-layer concerns.
package main

import (
	"fmt"
	"os"

	"github.com/latticefi/spotdex/cmd/dexd/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
