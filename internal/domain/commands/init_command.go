package commands

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

const initialCommitMessage = "Initial commit"

// Init is the interface for creating a model repository.
type Init interface {
	Execute(opts InitOptions) (*entities.CommitInfo, error)
}

// InitOptions holds the inputs of a repository creation.
type InitOptions struct {
	Repository entities.Repository
	ModelName  string
	RemoteURL  string
}

// InitCommand creates a repository with a fresh model and commits it.
type InitCommand struct {
	factory   repositories.VCSFactory
	manifests *ManifestBuilder
	bus       *entities.EventBus
}

// NewInitCommand creates a new InitCommand.
func NewInitCommand(factory repositories.VCSFactory, manifests *ManifestBuilder, bus *entities.EventBus) *InitCommand {
	return &InitCommand{factory: factory, manifests: manifests, bus: bus}
}

// Execute initializes the repository and records the initial commit.
func (it *InitCommand) Execute(opts InitOptions) (*entities.CommitInfo, error) {
	name := opts.ModelName
	if name == "" {
		name = opts.Repository.Name()
	}
	model := entities.NewModel(name)

	vcs, err := it.factory.Init(opts.Repository, model)
	if err != nil {
		return nil, err
	}
	defer closeVCS(vcs)

	if opts.RemoteURL != "" {
		if err = vcs.SetRemoteURL(opts.RemoteURL); err != nil {
			return nil, err
		}
	}

	message, err := entities.AppendManifest(initialCommitMessage, it.manifests.ForInitialCommit(model))
	if err != nil {
		return nil, err
	}
	commit, err := vcs.CommitChanges(message, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial commit: %w", err)
	}

	logger.Infof("Created repository %s", opts.Repository)
	it.bus.Publish(entities.RepositoryEvent{Type: entities.EventRepositoryCreated, Repository: opts.Repository})
	return commit, nil
}
