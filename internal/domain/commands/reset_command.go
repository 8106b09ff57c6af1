package commands

import (
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// Reset is the interface for discarding working copy state.
type Reset interface {
	Execute(repo entities.Repository, ref string) error
}

// ResetCommand moves the current branch to a ref and discards every edit.
// It also abandons a merge in progress.
type ResetCommand struct {
	factory repositories.VCSFactory
	bus     *entities.EventBus
}

// NewResetCommand creates a new ResetCommand.
func NewResetCommand(factory repositories.VCSFactory, bus *entities.EventBus) *ResetCommand {
	return &ResetCommand{factory: factory, bus: bus}
}

// Execute resets to ref, HEAD when empty.
func (it *ResetCommand) Execute(repo entities.Repository, ref string) error {
	if ref == "" {
		ref = "HEAD"
	}
	vcs, err := it.factory.Open(repo)
	if err != nil {
		return err
	}
	defer closeVCS(vcs)

	if err = vcs.ResetToRef(ref); err != nil {
		return err
	}
	logger.Infof("Reset %s to %s", repo.Name(), ref)
	it.bus.Publish(entities.RepositoryEvent{Type: entities.EventReset, Repository: repo, Detail: ref})
	return nil
}
