package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(c)
		cancel()
	}()
	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := newRootCmd(ctx).Execute(); err != nil {
		logrus.WithError(err).Error("condexpr failed")
		os.Exit(1)
	}
}

func newRootCmd(ctx context.Context) *cobra.Command {
	root := &cobra.Command{
		Use:     "condexpr",
		Short:   "Parse and evaluate condition expressions",
		Version: version,
	}
	root.AddCommand(newEvalCmd(ctx))
	root.AddCommand(newLintCmd())
	return root
}
