package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// SnapshotLoader materializes model snapshots from revisions or the working copy.
type SnapshotLoader struct {
	models repositories.ModelRepository
}

// NewSnapshotLoader creates a loader reading documents through models.
func NewSnapshotLoader(models repositories.ModelRepository) *SnapshotLoader {
	return &SnapshotLoader{models: models}
}

// FromRevision extracts rev into a private temporary folder, loads its model
// and removes the folder again on every path. A revision without a model
// yields a nil model.
func (it *SnapshotLoader) FromRevision(vcs repositories.VCSRepository, rev string) (*entities.Model, error) {
	dir, err := os.MkdirTemp("", "modelgit-snapshot-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot folder: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			logger.Warnf("[snapshot] Failed to remove %s: %v", dir, rmErr)
		}
	}()

	if err = vcs.ExtractCommit(rev, dir); err != nil {
		return nil, err
	}
	model, err := it.models.Load(filepath.Join(dir, entities.ModelFileName))
	if err != nil {
		if errors.Is(err, entities.ErrModelNotFound) {
			logger.Debugf("[snapshot] No model at %s", rev)
			return nil, nil //nolint:nilnil // a revision may predate the model
		}
		return nil, fmt.Errorf("failed to load model at %s: %w", rev, err)
	}
	model.File = ""
	return model, nil
}

// FromWorkingCopy loads the model of the working folder, nil when it has none.
func (it *SnapshotLoader) FromWorkingCopy(repo entities.Repository) (*entities.Model, error) {
	model, err := it.models.Load(repo.ModelFile())
	if err != nil {
		if errors.Is(err, entities.ErrModelNotFound) {
			return nil, nil //nolint:nilnil // working copy without a model
		}
		return nil, err
	}
	return model, nil
}
