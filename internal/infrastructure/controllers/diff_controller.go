package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// DiffController handles the "diff" subcommand.
type DiffController struct {
	command commands.Diff
}

// NewDiffController creates a new DiffController.
func NewDiffController(command commands.Diff) *DiffController {
	return &DiffController{command: command}
}

// GetBind returns the Cobra command metadata for the diff controller.
func (it *DiffController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "diff [from] [to]",
		Short: "Compare model snapshots",
		Long: `Compare the model of two revisions object by object. Without
arguments HEAD is compared with the working copy.`,
	}
}

// Execute prints the structural differences.
func (it *DiffController) Execute(cmd *cobra.Command, args []string) {
	opts := commands.DiffOptions{Repository: repositoryFrom(cmd)}
	if len(args) > 0 {
		opts.From = args[0]
	}
	if len(args) > 1 {
		opts.To = args[1]
	}

	cmp, err := it.command.Execute(opts)
	if err != nil {
		logger.Errorf("Diff failed: %v", err)
		return
	}
	if cmp.IsEmpty() {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No model changes")
		return
	}
	text, err := cmp.Describe()
	if err != nil {
		logger.Errorf("Rendering diff failed: %v", err)
		return
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), text)
}
