package main

import (
	"os"

	"github.com/dwikikusuma/shopping-browse/cmd/shopper/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
