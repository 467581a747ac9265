package main

import (
	"os"

	"github.com/fapiao-tools/invoice-recon/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
