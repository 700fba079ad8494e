package main

import (
	"os"

	"github.com/rustyeddy/slotbook/cmd/slotbook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
