package controllers

import (
	"fmt"
	"io"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

const defaultLogLimit = 20

// LogController handles the "log" subcommand.
type LogController struct {
	command commands.Log
}

// NewLogController creates a new LogController.
func NewLogController(command commands.Log) *LogController {
	return &LogController{command: command}
}

// GetBind returns the Cobra command metadata for the log controller.
func (it *LogController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "log [revision]",
		Short: "Show commit history",
		Long: `Show the commits reachable from a revision, newest first.
With --object only commits whose manifest lists that object are shown.`,
	}
}

// Execute prints the history.
func (it *LogController) Execute(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	object, _ := cmd.Flags().GetString("object")
	verbose, _ := cmd.Flags().GetBool("verbose")

	opts := commands.LogOptions{Repository: repositoryFrom(cmd), Limit: limit, ObjectID: object}
	if len(args) > 0 {
		opts.Revision = args[0]
	}
	entries, err := it.command.Execute(opts)
	if err != nil {
		logger.Errorf("Log failed: %v", err)
		return
	}
	for _, entry := range entries {
		writeLogEntry(cmd.OutOrStdout(), entry, verbose)
	}
}

func writeLogEntry(w io.Writer, entry *commands.LogEntry, verbose bool) {
	c := entry.Commit
	_, _ = fmt.Fprintf(w, "%s %s <%s> %s\n",
		c.ShortHash(), c.Author.When.Format("2006-01-02 15:04"), c.Author.Name, c.Subject())
	if !verbose || entry.Manifest == nil {
		return
	}
	for _, change := range entry.Manifest.Changes {
		_, _ = fmt.Fprintf(w, "    %-8s %s\n", change.Kind, change.ObjectID)
	}
}

// AddFlags adds the log-specific flags to the given Cobra command.
func (it *LogController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("limit", "n", defaultLogLimit, "Maximum number of commits, 0 for all")
	cmd.Flags().String("object", "", "Only show commits touching this object id")
}
