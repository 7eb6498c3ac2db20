package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/ishuide/Car-price-prediction/pkg/cli"
	"github.com/ishuide/Car-price-prediction/pkg/cli/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		if strings.Contains(err.Error(), "unknown command") {
			ui.PrintInfo("Run 'carprice --help' for usage.")
		}
		stop()
		os.Exit(1)
	}
}
