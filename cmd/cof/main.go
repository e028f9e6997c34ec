package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expertcof/internal/appctx"
	"expertcof/internal/bootstrap"
	"expertcof/internal/cli"
	"expertcof/internal/preferences"
	"expertcof/internal/shared/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildServices(ctx, cfg, bootstrap.ModeCLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cof: %v\n", err)
		return 1
	}
	defer app.Close()

	path, err := preferences.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cof: %v\n", err)
		return 1
	}
	session, err := appctx.New(preferences.NewFileStore(path), app.Auth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cof: %v\n", err)
		return 1
	}

	return cli.Execute(ctx, cli.TerminalRuntime(app, session), os.Args[1:])
}
