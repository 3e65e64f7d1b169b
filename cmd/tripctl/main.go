// Command tripctl inspects and edits the trip logbook directly against the
// configured store, without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/growth-logbook/backend/internal/app"
	"github.com/pkordes/growth-logbook/backend/internal/config"
	"github.com/pkordes/growth-logbook/backend/internal/region"
	"github.com/pkordes/growth-logbook/backend/internal/repo"
	"github.com/pkordes/growth-logbook/backend/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session holds the store-backed services of one command invocation.
// The store is opened on first use so region commands work without one.
type session struct {
	boltPath string
	driver   string
	logLevel string

	regions *region.Registry
	trips   *service.TripService
	exports *service.ExportService
	close   func()
}

func newRootCmd() *cobra.Command {
	s := &session{regions: region.Default()}
	root := &cobra.Command{
		Use:           "tripctl",
		Short:         "Inspect and edit the trip logbook store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.boltPath, "bolt", "", "Bolt database file (overrides BOLT_PATH)")
	root.PersistentFlags().StringVar(&s.driver, "driver", "", "Store driver: bolt or postgres (overrides STORE_DRIVER)")
	root.PersistentFlags().StringVar(&s.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	root.AddCommand(
		newRegionsCmd(s),
		newResolveCmd(s),
		newListCmd(s),
		newGetCmd(s),
		newSaveCmd(s),
		newDeleteCmd(s),
		newPhotoCmd(s),
		newVisitedCmd(s),
		newClassifyCmd(s),
		newExportCmd(s),
		newImportCmd(s),
		newSeedCmd(s),
	)
	return root
}

// open loads configuration, applies flag overrides and opens the store.
// Logs go to stderr so command output stays machine-readable.
func (s *session) open(ctx context.Context, stderr io.Writer) error {
	if s.trips != nil {
		return nil
	}
	cfg, err := s.config()
	if err != nil {
		return err
	}
	logger := app.NewLogger(stderr, cfg.LogLevel)

	kv, closeStore, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	s.close = closeStore
	s.trips = service.NewTripService(repo.NewTripRepo(kv), s.regions, service.WithLogger(logger))
	s.exports = service.NewExportService(s.trips, s.regions)
	return nil
}

func (s *session) config() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if s.driver != "" {
		cfg.StoreDriver = s.driver
	}
	if s.boltPath != "" {
		cfg.BoltPath = s.boltPath
	}
	if s.logLevel != "" {
		cfg.LogLevel = s.logLevel
	}
	return cfg, cfg.Validate()
}

func (s *session) shutdown() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
	s.trips = nil
	s.exports = nil
}

// storeRunE wraps a command body that needs the trip store. The store is
// closed when the body returns, whatever the outcome.
func storeRunE(s *session, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := s.open(cmd.Context(), cmd.ErrOrStderr()); err != nil {
			return err
		}
		defer s.shutdown()
		return fn(cmd, args)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// discardLogger is used by commands that build components needing a logger
// but whose output must stay clean.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
