package main

import (
	"os"

	"github.com/rogersnm/linkbook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
