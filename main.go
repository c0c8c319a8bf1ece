package main

import (
	"os"

	"github.com/lethalbit/bookwurm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
