package main

import (
	"fmt"
	"os"

	"github.com/compozy/prflow/cmd"
	"github.com/compozy/prflow/internal/domain"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(domain.ExitCode(domain.KindOf(err)))
	}
}
