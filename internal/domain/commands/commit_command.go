package commands

import (
	"errors"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// Commit is the interface for recording working copy changes.
type Commit interface {
	Execute(opts CommitOptions) (*entities.CommitInfo, error)
}

// CommitOptions holds the inputs of a commit.
type CommitOptions struct {
	Repository entities.Repository
	Message    string
	Amend      bool
}

// CommitCommand commits the working copy with a manifest describing which
// model objects changed.
type CommitCommand struct {
	factory   repositories.VCSFactory
	manifests *ManifestBuilder
	bus       *entities.EventBus
}

// NewCommitCommand creates a new CommitCommand.
func NewCommitCommand(
	factory repositories.VCSFactory,
	manifests *ManifestBuilder,
	bus *entities.EventBus,
) *CommitCommand {
	return &CommitCommand{factory: factory, manifests: manifests, bus: bus}
}

// Execute commits every change of the working copy. It returns nil when
// there is nothing to commit and the previous commit is not amended.
func (it *CommitCommand) Execute(opts CommitOptions) (*entities.CommitInfo, error) {
	message := strings.TrimSpace(opts.Message)
	if message == "" {
		return nil, errors.New("commit message must not be empty")
	}

	vcs, err := it.factory.Open(opts.Repository)
	if err != nil {
		return nil, err
	}
	defer closeVCS(vcs)

	if !opts.Amend {
		dirty, dirtyErr := vcs.HasChangesToCommit()
		if dirtyErr != nil {
			return nil, dirtyErr
		}
		if !dirty {
			logger.Infof("Nothing to commit in %s", opts.Repository.Name())
			return nil, nil //nolint:nilnil // nothing to commit
		}
	}

	manifest, err := it.manifests.ForCommit(vcs, opts.Amend)
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest: %w", err)
	}
	if message, err = entities.AppendManifest(message, manifest); err != nil {
		return nil, err
	}

	commit, err := vcs.CommitChanges(message, opts.Amend)
	if err != nil {
		return nil, err
	}
	if commit == nil {
		return nil, nil //nolint:nilnil // nothing to commit
	}

	logger.Infof("Committed %s: %s", commit.ShortHash(), commit.Subject())
	it.bus.Publish(entities.RepositoryEvent{
		Type:       entities.EventCommitted,
		Repository: opts.Repository,
		Detail:     commit.Hash,
	})
	return commit, nil
}

func closeVCS(vcs repositories.VCSRepository) {
	if err := vcs.Close(); err != nil {
		logger.Warnf("Failed to close repository %s: %v", vcs.Repository().Name(), err)
	}
}
