// mockerctl inspects and exercises mock rule fixtures without a network.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
