package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// MergeController handles the "merge" subcommand.
type MergeController struct {
	command commands.Merge
}

// NewMergeController creates a new MergeController.
func NewMergeController(command commands.Merge) *MergeController {
	return &MergeController{command: command}
}

// GetBind returns the Cobra command metadata for the merge controller.
func (it *MergeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Long: `Merge a local or remote-tracking branch into the current branch.
Non-conflicting model changes from both sides are combined; when both
sides change the same object, the current branch wins.`,
	}
}

// Execute runs the merge.
func (it *MergeController) Execute(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		logger.Error("merge needs exactly one branch name")
		return
	}

	report, err := it.command.Execute(commands.MergeOptions{Repository: repositoryFrom(cmd), Branch: args[0]})
	if err != nil {
		logger.Errorf("Merge failed: %v", err)
		return
	}

	out := cmd.OutOrStdout()
	switch {
	case report.Result == entities.MergeResultCancelled:
		_, _ = fmt.Fprintf(out, "Merge cancelled: %s\n", report.Reason)
	case report.FastForward:
		_, _ = fmt.Fprintf(out, "Fast-forward to %s\n", report.Commit.ShortHash())
	case report.Result == entities.MergeResultAlreadyUpToDate:
		_, _ = fmt.Fprintln(out, "Already up to date")
	default:
		_, _ = fmt.Fprintf(out, "%s (%s): %d changes applied, %d conflicts\n",
			report.Result, report.Commit.ShortHash(), report.Applied, report.Conflicts)
	}
}
