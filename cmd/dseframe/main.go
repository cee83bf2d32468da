package main

import (
	"os"

	"github.com/alexshd/dseframe/cmd/dseframe/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
