package main

import (
	"errors"
	"fmt"
	"os"

	"ghostls/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// failed paths were already reported one by one
		if !errors.Is(err, cli.ErrListingFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
