package main

import (
	"os"

	"github.com/paw-chain/stableswap/cmd/stableswapd/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
