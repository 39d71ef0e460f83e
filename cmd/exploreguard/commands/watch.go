package commands

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/exploreguard/exploreguard/internal/event"
	"github.com/exploreguard/exploreguard/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch permission files and report invalidations",
	Long: `watch runs the config watcher standalone and logs every cache
invalidation it triggers. Useful to verify that edits to permission
files are picked up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}

		bus := event.NewBus()
		defer bus.Close()

		unsub := bus.Subscribe(event.ConfigInvalidated, func(e event.Event) {
			data, _ := e.Data.(event.ConfigInvalidatedData)
			log.Info().Str("scope", data.Scope).Str("workspace", data.Workspace).
				Str("source", data.Source).Msg("config invalidated")
		})
		defer unsub()

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

		log.Info().Str("workspace", ws).Msg("watching permission files, ctrl-c to stop")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		return nil
	},
}
