package main

import (
	"os"

	"github.com/okian/rollcall/cmd/seed/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
