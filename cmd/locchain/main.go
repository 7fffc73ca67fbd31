package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ib-77/locchain/internal/app"
	"github.com/ib-77/locchain/internal/config"
	"github.com/ib-77/locchain/internal/logger"
	"github.com/ib-77/locchain/internal/tracer"
	"github.com/ib-77/locchain/pkg/location"
	"github.com/ib-77/locchain/pkg/rop"
)

var errNoLocation = errors.New("no location")

func main() {
	// a missing .env is fine; the environment may be set already
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	deadline   time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "locchain",
		Short:         "Resolve a location through a fallback chain of providers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultPath := os.Getenv("LOCCHAIN_CONFIG")
	if defaultPath == "" {
		defaultPath = "locchain.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultPath, "config file (env LOCCHAIN_CONFIG)")
	rootCmd.PersistentFlags().DurationVar(&opts.deadline, "deadline", time.Minute, "give up after this long")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newLastCmd(opts),
		newRequestCmd(opts),
	)
	return rootCmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the configured chain once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) (rop.Result[location.Position], error) {
				return a.Run(ctx)
			})
		},
	}
}

func newLastCmd(opts *rootOptions) *cobra.Command {
	var (
		bound     time.Duration
		behaviors []string
	)
	cmd := &cobra.Command{
		Use:   "last [provider]",
		Short: "Print the cached fix of one provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) (rop.Result[location.Position], error) {
				return a.Last(ctx, args[0], bound, behaviors)
			})
		},
	}
	cmd.Flags().DurationVar(&bound, "stale-after", 0, "reject fixes older than this (0 accepts any age)")
	cmd.Flags().StringSliceVarP(&behaviors, "behavior", "b", nil, "behaviors, e.g. permission,ignore:result_too_old")
	return cmd
}

func newRequestCmd(opts *rootOptions) *cobra.Command {
	var (
		timeout   time.Duration
		behaviors []string
	)
	cmd := &cobra.Command{
		Use:   "request [provider]",
		Short: "Ask one provider for a fresh fix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) (rop.Result[location.Position], error) {
				return a.Request(ctx, args[0], timeout, behaviors)
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "live request timeout (0 waits forever)")
	cmd.Flags().StringSliceVarP(&behaviors, "behavior", "b", nil, "behaviors, e.g. permission,settings,throttle")
	return cmd
}

func withApp(cmd *cobra.Command, opts *rootOptions,
	do func(ctx context.Context, a *app.App) (rop.Result[location.Position], error)) error {

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.deadline)
	defer cancel()

	shutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("setup tracer: %w", err)
	}
	defer shutdown(context.Background())

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	r, err := do(ctx, a)
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), r)
}

func report(w io.Writer, r rop.Result[location.Position]) error {
	pos, ok, err := r.Get()
	switch {
	case err != nil:
		return fmt.Errorf("%s: %w", location.KindOf(err), err)
	case !ok:
		return errNoLocation
	}
	_, err = fmt.Fprintln(w, pos)
	return err
}
