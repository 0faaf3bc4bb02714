package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"catalogsync/internal/config"
	"catalogsync/internal/logger"
	"catalogsync/internal/syncer"
	apperrors "catalogsync/pkg/errors"
)

// outputFlags collects repeated --out/-o values.
type outputFlags []string

func (o *outputFlags) String() string { return strings.Join(*o, ",") }

func (o *outputFlags) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("missing value for --out")
	}
	*o = append(*o, v)
	return nil
}

// parseArgs returns the --out/-o destinations. Parse failures are returned
// instead of exiting so every fatal error maps to status 1.
func parseArgs(args []string, output io.Writer) ([]string, error) {
	var outs outputFlags
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Var(&outs, "out", "output destination (repeatable)")
	fs.Var(&outs, "o", "shorthand for --out")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return outs, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	outs, err := parseArgs(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid arguments: %v\n", err)
		return 1
	}

	cfg, err := config.Load(config.Options{Outputs: outs})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	runID := uuid.NewString()
	log := logger.New(cfg.LogLevel).With("run_id", runID)
	defer log.Sync()

	for _, w := range cfg.Warnings {
		log.Warn("%s", w)
	}
	log.Info("syncing location %s (%s) to %s", cfg.Square.LocationID, cfg.Square.Environment, strings.Join(cfg.Sync.Outputs, ", "))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := syncer.DefaultDeps(cfg, runID, log)
	defer deps.Publisher.Close()

	report, err := syncer.New(cfg, runID, deps, log).Run(ctx)
	if err != nil {
		log.Error("sync failed: %v", err)
		var te *apperrors.TransportError
		if errors.As(err, &te) {
			if hint := te.Hint(); hint != "" {
				log.Error("hint: %s", hint)
			}
		}
		return 1
	}

	log.Info("sync complete: %d object(s), %d product(s), %d destination(s)",
		report.Objects, report.Export.Meta.ItemCount, len(report.Results))
	return 0
}
