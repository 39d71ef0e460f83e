package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/exploreguard/exploreguard/internal/event"
	"github.com/exploreguard/exploreguard/internal/server"
	"github.com/exploreguard/exploreguard/internal/watcher"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the permission engine over HTTP",
	Long: `serve starts an HTTP facade over the engine for the tool-dispatch
layer: decision checks, the merged config, and invalidation entry
points. A file watcher keeps the cache in sync with on-disk edits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}

		bus := event.NewBus()
		defer bus.Close()

		svc, err := newService(bus)
		if err != nil {
			return err
		}

		defaultsDir := filepath.Dir(svc.Paths().DefaultPath())
		w, err := watcher.New(svc, defaultsDir, ws)
		if err != nil {
			return err
		}
		w.Start()
		defer w.Stop()

		cfg := server.DefaultConfig()
		cfg.Port = servePort
		cfg.Workspace = ws
		cfg.Sources = sources

		srv := server.New(cfg, svc, bus)

		errCh := make(chan error, 1)
		go func() {
			log.Info().Int("port", cfg.Port).Str("workspace", ws).Msg("serving permission engine")
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8087, "Port to listen on")
}
