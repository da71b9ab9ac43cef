// Package main is the entry point for the complex shell server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lemonberrylabs/complex-shell/pkg/config"
	"github.com/lemonberrylabs/complex-shell/pkg/server"
)

func main() {
	configFlag := flag.String("config", "", "YAML config file (env "+config.EnvConfig+")")
	portFlag := flag.Int("port", 0, "HTTP server port (default 8787, env PORT)")
	grpcPortFlag := flag.Int("grpc-port", 0, "gRPC server port (default 8788, env GRPC_PORT)")
	hostFlag := flag.String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	historyFlag := flag.Int("history", 0, "Evaluations kept in history (default 100, env "+config.EnvHistory+")")
	flag.Parse()

	path := os.Getenv(config.EnvConfig)
	if *configFlag != "" {
		path = *configFlag
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if *portFlag != 0 {
		cfg.Port = *portFlag
	}
	if *grpcPortFlag != 0 {
		cfg.GRPCPort = *grpcPortFlag
	}
	if *hostFlag != "" {
		cfg.Host = *hostFlag
	}
	if *historyFlag != 0 {
		cfg.History = *historyFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
