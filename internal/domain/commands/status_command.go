package commands

import (
	"errors"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// Status is the interface for inspecting a repository.
type Status interface {
	Execute(repo entities.Repository) (*StatusReport, error)
	Tags(repo entities.Repository) ([]*entities.TagInfo, error)
}

// StatusReport summarizes the state of a working copy.
type StatusReport struct {
	Repository entities.Repository
	Head       *entities.CommitInfo
	Branches   *entities.BranchStatus
	RemoteURL  string
	Dirty      bool
	Merging    bool
}

// StatusCommand reads branch and working copy state.
type StatusCommand struct {
	factory repositories.VCSFactory
}

// NewStatusCommand creates a new StatusCommand.
func NewStatusCommand(factory repositories.VCSFactory) *StatusCommand {
	return &StatusCommand{factory: factory}
}

// Execute collects the full branch status of the repository.
func (it *StatusCommand) Execute(repo entities.Repository) (*StatusReport, error) {
	vcs, err := it.factory.Open(repo)
	if err != nil {
		return nil, err
	}
	defer closeVCS(vcs)

	report := &StatusReport{Repository: repo, Merging: vcs.IsMerging()}
	if report.Head, err = vcs.HeadCommit(); err != nil && !errors.Is(err, entities.ErrNoHead) {
		return nil, err
	}
	if report.Branches, err = vcs.BranchStatus(); err != nil {
		return nil, err
	}
	if report.Dirty, err = vcs.HasChangesToCommit(); err != nil {
		return nil, err
	}
	if report.RemoteURL, err = vcs.RemoteURL(); err != nil {
		return nil, err
	}
	return report, nil
}

// Tags lists the tags of the repository.
func (it *StatusCommand) Tags(repo entities.Repository) ([]*entities.TagInfo, error) {
	vcs, err := it.factory.Open(repo)
	if err != nil {
		return nil, err
	}
	defer closeVCS(vcs)
	return vcs.Tags()
}
