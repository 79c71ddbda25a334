package main

import (
	"fmt"
	"os"

	"commitsonic/internal/sonicctl/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sonicctl: %v\n", err)
		os.Exit(1)
	}
}
