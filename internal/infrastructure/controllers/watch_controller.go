package controllers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/infrastructure/watcher"
)

// WatchController handles the "watch" subcommand.
type WatchController struct {
	command  commands.Status
	bus      *entities.EventBus
	settings *entities.Settings
}

// NewWatchController creates a new WatchController.
func NewWatchController(command commands.Status, bus *entities.EventBus, settings *entities.Settings) *WatchController {
	return &WatchController{command: command, bus: bus, settings: settings}
}

// GetBind returns the Cobra command metadata for the watch controller.
func (it *WatchController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "watch",
		Short: "Print the status whenever the working copy changes",
	}
}

// Execute watches until interrupted.
func (it *WatchController) Execute(cmd *cobra.Command, _ []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := repositoryFrom(cmd)
	out := cmd.OutOrStdout()
	unsubscribe := it.bus.Subscribe(entities.ListenerFunc(func(event entities.RepositoryEvent) {
		if !event.Repository.Equal(repo) {
			return
		}
		report, err := it.command.Execute(repo)
		if err != nil {
			logger.Errorf("Status failed: %v", err)
			return
		}
		_, _ = fmt.Fprintf(out, "\n--- %s ---\n", time.Now().Format(time.TimeOnly))
		WriteStatus(out, report)
	}))
	defer unsubscribe()

	delay := time.Duration(it.settings.Watch.DebounceMillis) * time.Millisecond
	w := watcher.NewWorkingTreeWatcher(repo, it.bus, delay)
	if err := w.Start(ctx); err != nil {
		logger.Errorf("Watch failed: %v", err)
		return
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warnf("Failed to stop watcher: %v", err)
		}
	}()

	logger.Infof("Watching %s, press Ctrl+C to stop", repo)
	<-ctx.Done()
}
