package main

import (
	"os"

	"github.com/custodia-labs/docmirror/internal/adapters/driving/cli"
)

func main() {
	os.Exit(cli.Execute())
}
