package main

import (
	"os"

	"github.com/aerotrace-systems/aerotrace/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
