// Package preflight validates sync configuration without touching the
// network.
package preflight

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"catalogsync/internal/config"
	apperrors "catalogsync/pkg/errors"
)

// Run loads configuration with the strict token check, prints the outcome
// to w and returns the process exit code.
func Run(w io.Writer, opts config.Options) int {
	opts.StrictToken = true
	cfg, err := config.Load(opts)

	if cfg != nil {
		for _, warning := range cfg.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warning)
		}
	}

	if err != nil {
		var cfgErr *apperrors.ConfigurationError
		if errors.As(err, &cfgErr) {
			for _, v := range cfgErr.Violations {
				fmt.Fprintf(w, "❌ %s\n", v)
			}
		} else {
			fmt.Fprintf(w, "❌ %v\n", err)
		}
		fmt.Fprintln(w, "Preflight FAILED. Fix env vars and retry.")
		return 1
	}

	Summarize(w, cfg)
	fmt.Fprintln(w, "Preflight OK.")
	return 0
}

// Summarize prints the resolved configuration with the token redacted.
func Summarize(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "=== Square preflight ===")
	fmt.Fprintf(w, "Env: %s\n", cfg.Square.Environment)
	fmt.Fprintf(w, "Token: %s\n", cfg.RedactedToken())
	fmt.Fprintf(w, "Location ID: %s\n", cfg.Square.LocationID)

	rows := [][2]string{
		{"SQUARE_API_VERSION", cfg.Square.APIVersion},
		{"SQUARE_BASE_URL", cfg.Square.BaseURL},
		{"STRICT", strconv.FormatBool(cfg.Sync.Strict)},
		{"INCLUDE_OUT_OF_STOCK", strconv.FormatBool(cfg.Sync.IncludeOutOfStock)},
		{"OUTPUT_PATHS", strings.Join(cfg.Sync.Outputs, ",")},
		{"KAFKA_BROKERS", orDisabled(strings.Join(cfg.Kafka.Brokers, ","))},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s: %s\n", row[0], row[1])
	}
}

func orDisabled(v string) string {
	if v == "" {
		return "(disabled)"
	}
	return v
}
