package main

import (
	"os"

	"github.com/bodrovis/ternary/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
