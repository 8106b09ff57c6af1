package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// ResetController handles the "reset" subcommand.
type ResetController struct {
	command commands.Reset
}

// NewResetController creates a new ResetController.
func NewResetController(command commands.Reset) *ResetController {
	return &ResetController{command: command}
}

// GetBind returns the Cobra command metadata for the reset controller.
func (it *ResetController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "reset [ref]",
		Short: "Discard working copy changes",
		Long: `Move the current branch to a ref (default HEAD) and discard every
uncommitted change, including a merge in progress.`,
	}
}

// Execute resets the working copy.
func (it *ResetController) Execute(cmd *cobra.Command, args []string) {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}
	if err := it.command.Execute(repositoryFrom(cmd), ref); err != nil {
		logger.Errorf("Reset failed: %v", err)
	}
}
