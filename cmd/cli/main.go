package main

import (
	"os"

	"github.com/newsox/newsox/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
