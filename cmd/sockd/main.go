// Command sockd runs a TCP echo server on raw sockets.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/foxxorcat/sockhost/internal/echo"
	"github.com/foxxorcat/sockhost/manager/sockets"
)

var version = "0.1.0"

type options struct {
	cfg         echo.Config
	verbose     bool
	showVersion bool
}

// parseFlags returns flag.ErrHelp when -h was given.
func parseFlags(args []string) (*options, error) {
	opts := &options{cfg: echo.Defaults()}
	fs := flag.NewFlagSet("sockd", flag.ContinueOnError)

	fs.StringVarP(&opts.cfg.Address, "address", "a", opts.cfg.Address, "IPv4 address to listen on")
	fs.Uint16VarP(&opts.cfg.Port, "port", "p", opts.cfg.Port, "TCP port, 0 for an ephemeral port")
	fs.IntVar(&opts.cfg.Backlog, "backlog", opts.cfg.Backlog, "Pending connection queue length")
	fs.IntVar(&opts.cfg.BufferSize, "buffer-size", opts.cfg.BufferSize, "Per-connection buffer in bytes")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return opts, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Printf("sockd %s\n", version)
		return nil
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()
	sockets.SetLogger(logger.Named("sockets"))

	srv, err := echo.Listen(opts.cfg, logger.Named("echo"))
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "sockd: %v\n", err)
		os.Exit(1)
	}
}
