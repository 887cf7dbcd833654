package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/florianilch/kintai/cmd/kintai/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, os.Args); err != nil {
		commands.ReportError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
