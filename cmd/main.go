package main

import (
	"os"
	"os/signal"
	"syscall"

	"stockscore/internal/bootstrap"
)

func main() {
	c := bootstrap.NewContainer()
	c.MustInit()

	if err := c.Start(); err != nil {
		c.Log.Fatalf("failed to start: %v", err)
	}

	waitForShutdown(c)
}

// waitForShutdown blocks until SIGINT/SIGTERM or a fatal component error
func waitForShutdown(c *bootstrap.Container) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		c.Log.Infow("Shutdown signal received", "signal", sig.String())
	case <-c.Context.Done():
		c.Log.Warn("Shutting down after component failure")
	}

	c.Shutdown()
}
