package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// FetchController handles the "fetch" subcommand.
type FetchController struct {
	command commands.Sync
}

// NewFetchController creates a new FetchController.
func NewFetchController(command commands.Sync) *FetchController {
	return &FetchController{command: command}
}

// GetBind returns the Cobra command metadata for the fetch controller.
func (it *FetchController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "fetch",
		Short: "Fetch every branch from the remote",
	}
}

// Execute fetches from the remote.
func (it *FetchController) Execute(cmd *cobra.Command, _ []string) {
	prune, _ := cmd.Flags().GetBool("prune")

	result, err := it.command.Fetch(context.Background(), commands.SyncOptions{
		Repository: repositoryFrom(cmd),
		Progress:   progressWriter(cmd),
		Prune:      prune,
	})
	if err != nil {
		logger.Errorf("Fetch failed: %v", err)
		return
	}
	writeUpdates(cmd.OutOrStdout(), result.Remote, result.Updates)
	for _, name := range result.Pruned {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: pruned %s\n", result.Remote, name)
	}
	if result.UpToDate && len(result.Pruned) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Already up to date")
	}
}

// AddFlags adds the fetch-specific flags to the given Cobra command.
func (it *FetchController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("prune", false, "Remove remote-tracking branches deleted on the remote")
}
