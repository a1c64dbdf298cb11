package main

import (
	"os"

	"github.com/msto63/calcscript/cmd/calcscript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
