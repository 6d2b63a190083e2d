package main

import (
	"os"

	"github.com/xtding233/gacha-wish/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
