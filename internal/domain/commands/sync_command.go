package commands

import (
	"context"
	"io"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// Sync is the interface for exchanging commits with the remote.
type Sync interface {
	Push(ctx context.Context, opts SyncOptions) (*entities.PushResult, error)
	Fetch(ctx context.Context, opts SyncOptions) (*entities.FetchResult, error)
	DeleteBranch(ctx context.Context, opts DeleteBranchOptions) error
	SetRemote(repo entities.Repository, url string) error
}

// SyncOptions holds the inputs of a push or fetch.
type SyncOptions struct {
	Repository entities.Repository
	Progress   io.Writer
	Prune      bool
}

// DeleteBranchOptions selects which copies of a branch are deleted.
type DeleteBranchOptions struct {
	Repository entities.Repository
	Name       string
	Local      bool
	Remote     bool
}

// SyncCommand pushes, fetches and deletes branches using the configured credentials.
type SyncCommand struct {
	factory  repositories.VCSFactory
	settings *entities.Settings
	bus      *entities.EventBus
}

// NewSyncCommand creates a new SyncCommand.
func NewSyncCommand(factory repositories.VCSFactory, settings *entities.Settings, bus *entities.EventBus) *SyncCommand {
	return &SyncCommand{factory: factory, settings: settings, bus: bus}
}

// Push pushes the current branch and sets up tracking.
func (it *SyncCommand) Push(ctx context.Context, opts SyncOptions) (*entities.PushResult, error) {
	vcs, err := it.factory.Open(opts.Repository)
	if err != nil {
		return nil, err
	}
	defer closeVCS(vcs)

	result, err := vcs.Push(ctx, it.settings.Credentials(), opts.Progress)
	if err != nil {
		return nil, err
	}
	if !result.UpToDate {
		it.bus.Publish(entities.RepositoryEvent{Type: entities.EventPushed, Repository: opts.Repository})
	}
	return result, nil
}

// Fetch fetches every branch of the remote.
func (it *SyncCommand) Fetch(ctx context.Context, opts SyncOptions) (*entities.FetchResult, error) {
	vcs, err := it.factory.Open(opts.Repository)
	if err != nil {
		return nil, err
	}
	defer closeVCS(vcs)

	result, err := vcs.Fetch(ctx, it.settings.Credentials(), opts.Progress, opts.Prune)
	if err != nil {
		return nil, err
	}
	if !result.UpToDate || len(result.Pruned) > 0 {
		it.bus.Publish(entities.RepositoryEvent{Type: entities.EventFetched, Repository: opts.Repository})
	}
	return result, nil
}

// DeleteBranch removes the branch locally, on the remote, or both. The
// remote copy goes first so a failed push leaves the local branch intact.
func (it *SyncCommand) DeleteBranch(ctx context.Context, opts DeleteBranchOptions) error {
	vcs, err := it.factory.Open(opts.Repository)
	if err != nil {
		return err
	}
	defer closeVCS(vcs)

	if opts.Remote {
		if err = vcs.DeleteRemoteBranch(ctx, opts.Name, it.settings.Credentials()); err != nil {
			return err
		}
		logger.Infof("Deleted remote branch %s", opts.Name)
	}
	if opts.Local {
		if err = vcs.DeleteLocalBranch(opts.Name); err != nil {
			return err
		}
		logger.Infof("Deleted local branch %s", opts.Name)
	}
	it.bus.Publish(entities.RepositoryEvent{
		Type:       entities.EventBranchDeleted,
		Repository: opts.Repository,
		Detail:     opts.Name,
	})
	return nil
}

// SetRemote sets the remote URL, an empty URL removes the remote.
func (it *SyncCommand) SetRemote(repo entities.Repository, url string) error {
	vcs, err := it.factory.Open(repo)
	if err != nil {
		return err
	}
	defer closeVCS(vcs)
	return vcs.SetRemoteURL(url)
}
