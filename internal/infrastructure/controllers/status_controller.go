package controllers

import (
	"fmt"
	"io"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// StatusController handles the "status" subcommand.
type StatusController struct {
	command commands.Status
}

// NewStatusController creates a new StatusController.
func NewStatusController(command commands.Status) *StatusController {
	return &StatusController{command: command}
}

// GetBind returns the Cobra command metadata for the status controller.
func (it *StatusController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "status",
		Short: "Show the working copy and branch status",
		Long: `Show whether the working copy has uncommitted changes, and list every
local and remote branch with its tracking and merge status.`,
	}
}

// Execute prints the status report.
func (it *StatusController) Execute(cmd *cobra.Command, _ []string) {
	report, err := it.command.Execute(repositoryFrom(cmd))
	if err != nil {
		logger.Errorf("Status failed: %v", err)
		return
	}
	WriteStatus(cmd.OutOrStdout(), report)
}

// WriteStatus renders the report, one branch per line.
func WriteStatus(w io.Writer, report *commands.StatusReport) {
	_, _ = fmt.Fprintf(w, "Repository: %s\n", report.Repository)
	if report.RemoteURL != "" {
		_, _ = fmt.Fprintf(w, "Remote:     %s\n", report.RemoteURL)
	}
	if report.Head != nil {
		_, _ = fmt.Fprintf(w, "HEAD:       %s %s\n", report.Head.ShortHash(), report.Head.Subject())
	}
	switch {
	case report.Merging:
		_, _ = fmt.Fprintln(w, "A merge is in progress")
	case report.Dirty:
		_, _ = fmt.Fprintln(w, "Uncommitted changes")
	default:
		_, _ = fmt.Fprintln(w, "Working copy clean")
	}

	_, _ = fmt.Fprintln(w)
	for _, b := range report.Branches.Branches {
		marker := " "
		if b.IsCurrent {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %-30s %s\n", marker, b.DisplayName(), branchFlags(b))
	}
}

func branchFlags(b *entities.BranchInfo) string {
	var flags []string
	if b.IsPrimaryBranch {
		flags = append(flags, "primary")
	}
	if b.Ahead > 0 {
		flags = append(flags, fmt.Sprintf("ahead %d", b.Ahead))
	}
	if b.Behind > 0 {
		flags = append(flags, fmt.Sprintf("behind %d", b.Behind))
	}
	if b.IsMerged && !b.IsPrimaryBranch {
		flags = append(flags, "merged")
	}
	if b.IsRemoteDeleted {
		flags = append(flags, "remote deleted")
	}
	if !b.HasCommits() {
		flags = append(flags, "no commits")
	}
	if len(flags) == 0 {
		return ""
	}
	return "[" + strings.Join(flags, ", ") + "]"
}
