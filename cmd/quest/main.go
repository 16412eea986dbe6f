package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/quest/internal/domain"
	"github.com/doeshing/quest/internal/infrastructure/cli"
	"github.com/doeshing/quest/internal/infrastructure/cli/helpers"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()
	opts := cli.Options{Verbose: isVerbose()}

	root, closeFn, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer closeFn()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", helpers.DescribeError(err))
		return 1
	}
	return 0
}

func isVerbose() bool {
	v := os.Getenv(domain.EnvDebug)
	return v == "1" || strings.EqualFold(v, "true")
}
