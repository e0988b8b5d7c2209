package main

import (
	"os"

	"github.com/rustyeddy/lotsizer/cmd/lotsizer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
