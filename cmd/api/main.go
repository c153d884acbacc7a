package main

import (
	"context"
	"fmt"
	"os"

	"task-user-service/cmd/api/app"
	"task-user-service/cmd/api/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "application exited with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	a, err := app.New(ctx)
	if err != nil {
		return err
	}

	ctx, stop := server.WithSignal(ctx, a.Logger)
	defer stop()

	return a.Run(ctx)
}
