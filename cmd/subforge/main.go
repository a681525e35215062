package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"subforge/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			printError(os.Stderr, err)
		}
		os.Exit(services.ExitCode(err))
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	fmt.Fprintln(w, "Hint:", services.Hint(err))
	if services.IsInputError(err) {
		fmt.Fprintln(w, "Run subforge help <command> for usage.")
	}
}
