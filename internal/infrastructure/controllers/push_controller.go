package controllers

import (
	"context"
	"fmt"
	"io"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// PushController handles the "push" subcommand.
type PushController struct {
	command commands.Sync
}

// NewPushController creates a new PushController.
func NewPushController(command commands.Sync) *PushController {
	return &PushController{command: command}
}

// GetBind returns the Cobra command metadata for the push controller.
func (it *PushController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "push",
		Short: "Push the current branch to the remote",
	}
}

// Execute pushes the current branch.
func (it *PushController) Execute(cmd *cobra.Command, _ []string) {
	result, err := it.command.Push(context.Background(), commands.SyncOptions{
		Repository: repositoryFrom(cmd),
		Progress:   progressWriter(cmd),
	})
	if err != nil {
		logger.Errorf("Push failed: %v", err)
		return
	}
	if result.UpToDate {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Everything up to date")
		return
	}
	writeUpdates(cmd.OutOrStdout(), result.Remote, result.Updates)
}

func progressWriter(cmd *cobra.Command) io.Writer {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return cmd.ErrOrStderr()
	}
	return nil
}

func writeUpdates(w io.Writer, remote string, updates []entities.RefUpdate) {
	for _, u := range updates {
		switch {
		case u.Deleted:
			_, _ = fmt.Fprintf(w, "%s: - %s\n", remote, u.Name)
		case u.OldHash == "":
			_, _ = fmt.Fprintf(w, "%s: * %s %s\n", remote, u.Name, short(u.NewHash))
		default:
			_, _ = fmt.Fprintf(w, "%s:   %s %s..%s\n", remote, u.Name, short(u.OldHash), short(u.NewHash))
		}
	}
}

func short(hash string) string {
	return (&entities.CommitInfo{Hash: hash}).ShortHash()
}
