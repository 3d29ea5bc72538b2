package main

import (
	"os"

	"github.com/finsightlab/finsight/cmd/finsight/commands"
)

// main is the entry point for the FinSight CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
