package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kartfirsat/campaignworker/logger"
	"github.com/kartfirsat/campaignworker/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	os.Exit(execute())
}

// execute runs the command line and maps the outcome to a process exit code
func execute() int {
	log := logger.Default

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := worker.ExitOK
	if err := newRootCmd(&code).ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		if ctx.Err() != nil {
			return worker.ExitInterrupted
		}
		return worker.ExitErrors
	}
	return code
}
