package main

import (
	"os"

	"propsim/cmd/propsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
