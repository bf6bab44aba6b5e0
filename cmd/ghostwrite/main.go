// Command ghostwrite is an AI writing assistant. It drafts text in the
// terminal with inline suggestions and runs a relay server that other
// editors can ask for completions.
//
// Usage:
//
//	ghostwrite draft                 # draft in the terminal, text to stdout
//	ghostwrite draft > note.txt      # editor on the tty, text to a file
//	ghostwrite serve --listen :3000  # run the HTTP relay
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
