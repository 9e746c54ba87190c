/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/josephgoksu/prpflow/cmd"
	"github.com/josephgoksu/prpflow/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer logger.HandlePanic()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.Execute(ctx)
}
