package main

import (
	"os"

	ragbenchcmder "github.com/ragbenchco/ragbench/cmd/ragbench"
)

func main() {
	cmd := ragbenchcmder.NewRagbenchCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
