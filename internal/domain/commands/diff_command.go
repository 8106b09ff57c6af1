package commands

import (
	"github.com/rios0rios0/modelgit/internal/comparison"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// Diff is the interface for comparing two model snapshots.
type Diff interface {
	Execute(opts DiffOptions) (*comparison.Comparison, error)
}

// DiffOptions selects the snapshots. An empty From means HEAD, an empty To
// means the working copy.
type DiffOptions struct {
	Repository entities.Repository
	From       string
	To         string
}

// DiffCommand compares model snapshots of two revisions.
type DiffCommand struct {
	factory   repositories.VCSFactory
	snapshots *SnapshotLoader
}

// NewDiffCommand creates a new DiffCommand.
func NewDiffCommand(factory repositories.VCSFactory, snapshots *SnapshotLoader) *DiffCommand {
	return &DiffCommand{factory: factory, snapshots: snapshots}
}

// Execute loads both snapshots and compares them.
func (it *DiffCommand) Execute(opts DiffOptions) (*comparison.Comparison, error) {
	vcs, err := it.factory.Open(opts.Repository)
	if err != nil {
		return nil, err
	}
	defer closeVCS(vcs)

	from := opts.From
	if from == "" {
		from = "HEAD"
	}
	left, err := it.snapshots.FromRevision(vcs, from)
	if err != nil {
		return nil, err
	}

	var right *entities.Model
	if opts.To == "" {
		right, err = it.snapshots.FromWorkingCopy(opts.Repository)
	} else {
		right, err = it.snapshots.FromRevision(vcs, opts.To)
	}
	if err != nil {
		return nil, err
	}
	return comparison.Compare(left, right), nil
}
