package main

import (
	"os"

	"github.com/voxnote/voxnote/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
