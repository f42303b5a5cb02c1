package main

import (
	"os"

	"github.com/pun33th45/spotmate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
