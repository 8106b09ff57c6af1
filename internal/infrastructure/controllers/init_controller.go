package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// InitController handles the "init" subcommand.
type InitController struct {
	command commands.Init
}

// NewInitController creates a new InitController.
func NewInitController(command commands.Init) *InitController {
	return &InitController{command: command}
}

// GetBind returns the Cobra command metadata for the init controller.
func (it *InitController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "init",
		Short: "Create a model repository",
		Long: `Create a repository in the working folder with an empty model
using the standard folder layout, and record the initial commit.`,
	}
}

// Execute creates the repository.
func (it *InitController) Execute(cmd *cobra.Command, _ []string) {
	name, _ := cmd.Flags().GetString("name")
	remote, _ := cmd.Flags().GetString("remote")

	commit, err := it.command.Execute(commands.InitOptions{
		Repository: repositoryFrom(cmd),
		ModelName:  name,
		RemoteURL:  remote,
	})
	if err != nil {
		logger.Errorf("Init failed: %v", err)
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Initialized repository at %s\n", commit.ShortHash())
}

// AddFlags adds the init-specific flags to the given Cobra command.
func (it *InitController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Model name (default: the folder name)")
	cmd.Flags().String("remote", "", "URL of the shared remote")
}
