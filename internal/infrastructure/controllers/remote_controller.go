package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// RemoteController handles the "remote" subcommand.
type RemoteController struct {
	command commands.Sync
}

// NewRemoteController creates a new RemoteController.
func NewRemoteController(command commands.Sync) *RemoteController {
	return &RemoteController{command: command}
}

// GetBind returns the Cobra command metadata for the remote controller.
func (it *RemoteController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "remote [url]",
		Short: "Set or remove the remote URL",
		Long:  `Set the URL of the shared remote. Without a URL the remote is removed.`,
	}
}

// Execute sets the remote URL.
func (it *RemoteController) Execute(cmd *cobra.Command, args []string) {
	url := ""
	if len(args) > 0 {
		url = args[0]
	}
	if err := it.command.SetRemote(repositoryFrom(cmd), url); err != nil {
		logger.Errorf("Setting remote failed: %v", err)
		return
	}
	if url == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Remote removed")
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Remote set to %s\n", url)
}
