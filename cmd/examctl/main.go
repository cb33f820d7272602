package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yigit/prelimplanner/cmd/examctl/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(commands.ExecuteContext(ctx))
}
