package main

import (
	"os"

	"github.com/cescalante/optilab/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
