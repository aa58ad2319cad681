package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/pflag"
)

const appName = "mediastream"

func main() {
	flags, err := parseFlags(os.Args)
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	ctx := getContext(flags)

	cfg := defaultConfig()
	if flags.ConfigPath != "" {
		exitOnError(ctx, readConfigFromPath(ctx, flags.ConfigPath, &cfg), "unable to read the config")
	}
	exitOnError(ctx, cfg.applyFlags(flags), "invalid flags")

	if flags.WriteConfig {
		_, err := cfg.WriteTo(os.Stdout)
		exitOnError(ctx, err, "unable to print the config")
		return
	}

	if cfg.URL == "" {
		logger.Fatalf(ctx, "no input is given; usage: %s [flags] <file-or-url>", appName)
	}

	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	ctx, cancelFunc := initRuntime(ctx, cfg)
	defer cancelFunc()

	report, err := run(ctx, cfg)
	exitOnError(ctx, err, "unable to process '%s'", cfg.URL)

	_, err = report.WriteTo(os.Stdout)
	exitOnError(ctx, err, "unable to print the report")
	waitForMetricsScrape(ctx, cfg)
}

// waitForMetricsScrape keeps the metrics endpoint (if any) alive until the
// process is interrupted.
func waitForMetricsScrape(ctx context.Context, cfg Config) {
	if cfg.ListenMetrics == "" {
		return
	}
	<-ctx.Done()
}

func exitOnError(
	ctx context.Context,
	err error,
	format string,
	args ...any,
) {
	if err == nil {
		return
	}
	logger.Fatalf(ctx, "%s: %v", fmt.Sprintf(format, args...), err)
}
