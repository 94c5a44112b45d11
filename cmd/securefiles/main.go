package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/templui/securefiles/cmd/securefiles/cmd"
	"github.com/templui/securefiles/internal/service"
)

var version = "dev"

func main() {
	env := &cmd.Env{Version: version}
	rootCmd := cmd.RootCmd(env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	env.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var sessionErr *service.SessionError
		if errors.As(err, &sessionErr) || errors.Is(err, service.ErrNotAuthenticated) {
			fmt.Fprintln(os.Stderr, "Run `securefiles login` to sign in.")
		}
		os.Exit(1)
	}
}
