package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// CommitController handles the "commit" subcommand.
type CommitController struct {
	command commands.Commit
}

// NewCommitController creates a new CommitController.
func NewCommitController(command commands.Commit) *CommitController {
	return &CommitController{command: command}
}

// GetBind returns the Cobra command metadata for the commit controller.
func (it *CommitController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "commit",
		Short: "Commit the working copy",
		Long: `Stage and commit every change of the working copy. The commit message
gets a manifest listing the model objects that were added, deleted,
modified or moved.`,
	}
}

// Execute commits the working copy.
func (it *CommitController) Execute(cmd *cobra.Command, _ []string) {
	message, _ := cmd.Flags().GetString("message")
	amend, _ := cmd.Flags().GetBool("amend")

	commit, err := it.command.Execute(commands.CommitOptions{
		Repository: repositoryFrom(cmd),
		Message:    message,
		Amend:      amend,
	})
	if err != nil {
		logger.Errorf("Commit failed: %v", err)
		return
	}
	if commit == nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to commit")
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", commit.ShortHash(), commit.Subject())
}

// AddFlags adds the commit-specific flags to the given Cobra command.
func (it *CommitController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("message", "m", "", "Commit message")
	cmd.Flags().Bool("amend", false, "Replace the tip commit")
}
