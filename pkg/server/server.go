// Package server wires the REST API, the web UI and the gRPC service around
// a shared calculator and evaluation history.
package server

import (
	"context"
	"errors"
	"log"

	"github.com/lemonberrylabs/complex-shell/pkg/api"
	grpcapi "github.com/lemonberrylabs/complex-shell/pkg/api/grpc"
	"github.com/lemonberrylabs/complex-shell/pkg/config"
	"github.com/lemonberrylabs/complex-shell/pkg/stdlib"
	"github.com/lemonberrylabs/complex-shell/pkg/store"
	"github.com/lemonberrylabs/complex-shell/web"
)

// Run starts every server described by cfg and blocks until ctx is done or
// a server fails. Both servers are stopped gracefully before returning.
func Run(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s := store.New(cfg.History)
	calc := cfg.Calculator(stdlib.NewRegistry())
	server := api.New(s, calc)

	// Register the web UI (non-fatal if template parsing fails)
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Warning: web UI disabled due to template error: %v", r)
			}
		}()
		ui := web.New(s, calc)
		ui.Register(server.App())
	}()

	errCh := make(chan error, 2)

	grpcServer := grpcapi.New(s, calc)
	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr())
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- err
		}
	}()

	go func() {
		log.Printf("Complex shell server listening on %s (magnitude=%d, precision=%d, polar=%t)",
			cfg.Addr(), cfg.Magnitude, cfg.Precision, cfg.Polar)
		if err := server.Listen(cfg.Addr()); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case runErr = <-errCh:
		log.Printf("Server error: %v", runErr)
	}

	grpcServer.GracefulStop()
	if err := server.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
		runErr = errors.Join(runErr, err)
	}
	return runErr
}
