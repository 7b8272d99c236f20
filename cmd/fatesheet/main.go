// Package main runs the fatesheet web server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/R3E-Network/fatesheet/internal/app/runtime"
	"github.com/R3E-Network/fatesheet/internal/config"
	"github.com/R3E-Network/fatesheet/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatesheet: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("fatesheet", flag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "dotenv file to load before reading the environment")
	addr := flags.String("addr", "", "listen address, overrides HTTP_ADDR")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWithEnvFile(*envFile)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := logging.New("fatesheet", cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := runtime.NewApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}

	runErr := application.Run(ctx)
	log.Info("shutting down")
	if err := application.Shutdown(context.Background()); err != nil {
		log.WithError(err).Error("shutdown")
	}
	return runErr
}
