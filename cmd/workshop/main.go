// Package main is the entry point for the workshop organizer.
//
// The binary is both the HTTP server (`workshop serve`) and a small CLI over
// the same store: export and import backups, render prompts, list tools and
// themes, reset. Prompts print to stdout, so `workshop prompt <id> | pbcopy`
// puts one on the clipboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
