package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sadopc/focusflow/internal/cli"
)

// Set via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// cobra has already printed the error.
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	stop()
	if err != nil {
		os.Exit(1)
	}
}
