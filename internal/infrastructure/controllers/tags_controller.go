package controllers

import (
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// TagsController handles the "tags" subcommand.
type TagsController struct {
	command commands.Status
}

// NewTagsController creates a new TagsController.
func NewTagsController(command commands.Status) *TagsController {
	return &TagsController{command: command}
}

// GetBind returns the Cobra command metadata for the tags controller.
func (it *TagsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "tags",
		Short: "List tags",
	}
}

// Execute prints every tag with its commit.
func (it *TagsController) Execute(cmd *cobra.Command, _ []string) {
	tags, err := it.command.Tags(repositoryFrom(cmd))
	if err != nil {
		logger.Errorf("Listing tags failed: %v", err)
		return
	}
	for _, tag := range tags {
		line := fmt.Sprintf("%-20s %s", tag.ShortName, tag.Commit.ShortHash())
		if tag.IsOrphaned {
			line += " (orphaned)"
		}
		if tag.IsAnnotated() {
			subject, _, _ := strings.Cut(strings.TrimSpace(tag.Annotation.Message), "\n")
			line += " " + subject
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
	}
}
