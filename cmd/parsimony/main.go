// Command parsimony searches for maximum-parsimony phylogenies.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/parsimony/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stderr, cli.LogWarn).RootCommand().ExecuteContext(ctx)
	cancel()

	code := cli.ExitCode(err)
	if code != cli.ExitOK && code != cli.ExitCancelled {
		fmt.Fprintln(os.Stderr, "parsimony:", err)
	}
	os.Exit(code)
}
