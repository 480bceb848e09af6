package main

import (
	"os"

	"github.com/rustyeddy/tracker/cmd/tracker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
