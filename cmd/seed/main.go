package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"task-user-service/internal/seed"
	"task-user-service/pkg/logger"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		host      string
		port      int
		prefix    string
		users     int
		tasks     int
		tasksFile string
	)

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Populate a running task-user-service with random users and tasks",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if users < 0 || tasks < 0 {
				return fmt.Errorf("--users and --tasks must not be negative")
			}

			l, err := logger.NewWithConfig(logger.Config{
				Level:       "info",
				Format:      "console",
				OutputPath:  "stdout",
				ServiceName: "task-user-service-seed",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = l.Sync() }()

			cfg := seed.Config{
				BaseURL:   "http://" + net.JoinHostPort(host, strconv.Itoa(port)),
				APIPrefix: prefix,
				Users:     users,
				Tasks:     tasks,
			}
			if tasksFile != "" {
				names, err := seed.LoadTaskNames(tasksFile)
				if err != nil {
					return err
				}
				cfg.TaskNames = names
			}

			res, err := seed.New(cfg, l).Run(cmd.Context())
			if err != nil {
				l.Error("seeding failed", zap.Error(err))
				return err
			}
			cmd.Printf("%d users and %d tasks added at %s\n", res.Users, res.Tasks, cfg.BaseURL)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&host, "url", "u", "localhost", "API host")
	flags.IntVarP(&port, "port", "p", 3000, "API port")
	flags.StringVar(&prefix, "prefix", "/api", "API path prefix")
	flags.IntVarP(&users, "users", "n", 20, "number of users to create")
	flags.IntVarP(&tasks, "tasks", "t", 100, "number of tasks to create")
	flags.StringVar(&tasksFile, "tasks-file", "", "file with one task name per line")

	return cmd
}
