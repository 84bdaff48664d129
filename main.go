package main

import (
	"os"

	"todocal/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
