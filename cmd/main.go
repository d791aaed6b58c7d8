package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gomcpgo/replicate/pkg/responses"
)

// Version information (set by build script)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
)

func main() {
	// Ctrl+C aborts a running poll and stops the fake server
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := newRootCmd()
	cmd, err := root.ExecuteContextC(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(root.OutOrStdout(), responses.BuildErrorResponse(cmd.Name(), err))
		os.Exit(1)
	}
}
