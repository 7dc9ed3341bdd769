// Command depengine runs a declarative EVM job document against a live
// network: it wires the YAML-decoded job/templates into an engine
// ExecutionContext backed by a real ethclient provider and key-based
// signer, then dispatches it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/forgebase/depengine/internal/infrastructure/logging"
)

func main() {
	appLogger, err := logging.New(logging.Options{
		Level:     "info",
		Component: "cli",
		Layer:     "infrastructure",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create application logger: %v\n", err)
		os.Exit(1)
	}

	correlationID := logging.GenerateCorrelationID()
	ctx := logging.WithCorrelationID(context.Background(), correlationID)

	rootCmd := newRootCmd(appLogger)
	appLogger.Info(ctx, "starting depengine command", "pid", os.Getpid())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
