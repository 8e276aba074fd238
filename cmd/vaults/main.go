package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vault-cli/vaults/internal/cli"
	"github.com/vault-cli/vaults/internal/util"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "0.11.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(util.ExitError)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version, os.Args[1:])
	stop()

	if err != nil {
		util.HandleError(err, "")
	}
}
