package main

import (
	"context"
	"fmt"
	"os"

	"github.com/niklucky/mysql-query-builder/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(nil).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "mqb:", err)
		os.Exit(1)
	}
}
