package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// DeleteBranchController handles the "delete-branch" subcommand.
type DeleteBranchController struct {
	command commands.Sync
}

// NewDeleteBranchController creates a new DeleteBranchController.
func NewDeleteBranchController(command commands.Sync) *DeleteBranchController {
	return &DeleteBranchController{command: command}
}

// GetBind returns the Cobra command metadata for the delete-branch controller.
func (it *DeleteBranchController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "delete-branch <name>",
		Short: "Delete a branch locally and optionally on the remote",
	}
}

// Execute deletes the branch.
func (it *DeleteBranchController) Execute(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		logger.Error("delete-branch needs exactly one branch name")
		return
	}
	remote, _ := cmd.Flags().GetBool("remote")
	keepLocal, _ := cmd.Flags().GetBool("keep-local")

	if err := it.command.DeleteBranch(context.Background(), commands.DeleteBranchOptions{
		Repository: repositoryFrom(cmd),
		Name:       args[0],
		Local:      !keepLocal,
		Remote:     remote,
	}); err != nil {
		logger.Errorf("Deleting branch failed: %v", err)
	}
}

// AddFlags adds the delete-branch-specific flags to the given Cobra command.
func (it *DeleteBranchController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("remote", false, "Also delete the branch on the remote")
	cmd.Flags().Bool("keep-local", false, "Keep the local branch")
}
