package main

import (
	"fmt"
	"os"

	"github.com/flant/negentropy/sepctl/internal/command"
)

func main() {
	if err := command.NewRootCMD().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
