package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/modelgit/internal/domain/repositories"
	"github.com/rios0rios0/modelgit/internal/infrastructure/repositories/gitvcs"
	"github.com/rios0rios0/modelgit/internal/infrastructure/repositories/modelfile"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register auth registry with the transport schemes go-git understands
	if err := container.Provide(gitvcs.NewDefaultAuthRegistry); err != nil {
		return err
	}

	// Register the model document store
	if err := container.Provide(func() domainRepos.ModelRepository {
		return modelfile.NewModelFileRepository()
	}); err != nil {
		return err
	}

	// Register the VCS factory
	if err := container.Provide(gitvcs.NewFactory); err != nil {
		return err
	}
	if err := container.Provide(func(impl *gitvcs.Factory) domainRepos.VCSFactory {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
