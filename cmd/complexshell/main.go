// Package main is the entry point for the complex shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/complex-shell/pkg/batch"
	"github.com/lemonberrylabs/complex-shell/pkg/config"
	"github.com/lemonberrylabs/complex-shell/pkg/expr"
	"github.com/lemonberrylabs/complex-shell/pkg/server"
	"github.com/lemonberrylabs/complex-shell/pkg/shell"
	"github.com/lemonberrylabs/complex-shell/pkg/stdlib"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "complexshell",
		Short:         "Evaluate complex-number expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runREPL,
	}
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("complexshell version {{.Version}}\n")

	rootCmd.PersistentFlags().String("config", "", "YAML config file (env "+config.EnvConfig+")")
	config.RegisterDisplayFlags(rootCmd.PersistentFlags())
	rootCmd.Flags().Bool("trace", false, "Print tokens and postfix before each result")

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell (default)",
		Args:  cobra.NoArgs,
		RunE:  runREPL,
	}
	replCmd.Flags().Bool("trace", false, "Print tokens and postfix before each result")

	evalCmd := &cobra.Command{
		Use:   "eval EXPR...",
		Short: "Evaluate expressions and print their results",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runEval,
	}
	evalCmd.Flags().Bool("trace", false, "Print tokens and postfix before each result")

	batchCmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Run YAML batch files of expressions and expected results",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST, web UI and gRPC servers",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	config.RegisterServerFlags(serveCmd.Flags())

	rootCmd.AddCommand(replCmd, evalCmd, batchCmd, serveCmd)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig resolves the settings for cmd: defaults, the config file, the
// environment and finally the flags given on the command line.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := os.Getenv(config.EnvConfig)
	if v, _ := cmd.Flags().GetString("config"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	trace, _ := cmd.Flags().GetBool("trace")

	sh := &shell.Shell{
		Calc:  cfg.Calculator(stdlib.NewRegistry()),
		Trace: trace,
		Out:   cmd.OutOrStdout(),
	}
	return sh.RunTerminal(cmd.Context())
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	trace, _ := cmd.Flags().GetBool("trace")
	calc := cfg.Calculator(stdlib.NewRegistry())
	out := cmd.OutOrStdout()

	failed := 0
	for _, text := range args {
		tr, err := calc.Trace(text)
		if trace && tr != nil {
			fmt.Fprintf(out, "Tokens = %s\n", expr.Join(tr.Tokens))
			fmt.Fprintf(out, "Postfix = %s\n", expr.Join(tr.Postfix))
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", text, err)
			failed++
			continue
		}
		fmt.Fprintln(out, calc.Format(tr.Result))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d expressions failed", failed, len(args))
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	calc := cfg.Calculator(stdlib.NewRegistry())
	out := cmd.OutOrStdout()

	failed := 0
	for _, path := range args {
		f, err := batch.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		fmt.Fprintf(out, "== %s\n", path)
		report, err := batch.Run(cmd.Context(), calc, f)
		if report != nil {
			report.Write(out)
			failed += report.Failed
		}
		if err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d batch case(s) failed", failed)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return server.Run(cmd.Context(), cfg)
}
