package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc := &commandContext{}
	cmd := newRootCommand(cc)
	err := cmd.ExecuteContext(ctx)
	cc.close()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			var e *errs.Error
			if errors.As(err, &e) && e.Hint != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", e.Hint)
			}
		}
		stop()
		os.Exit(1)
	}
}
