package commands

import (
	"errors"

	"github.com/rios0rios0/modelgit/internal/comparison"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// ManifestBuilder derives commit manifests from structural model diffs.
type ManifestBuilder struct {
	snapshots *SnapshotLoader
}

// NewManifestBuilder creates a builder loading snapshots through the loader.
func NewManifestBuilder(snapshots *SnapshotLoader) *ManifestBuilder {
	return &ManifestBuilder{snapshots: snapshots}
}

// ForInitialCommit lists every addressable object of the model as added,
// in traversal order.
func (it *ManifestBuilder) ForInitialCommit(model *entities.Model) *entities.CommitManifest {
	var changes []entities.ObjectChange
	for _, obj := range model.AddressableObjects() {
		changes = append(changes, entities.ObjectChange{ObjectID: obj.ID, Kind: entities.ChangeAdded})
	}
	return entities.NewCommitManifest(changes, false)
}

// ForCommit diffs the tip against the working copy. When amending, the
// entries of the tip's own manifest are merged in first, so the amended
// commit keeps describing everything it changes. Without a tip the working
// model is described as an initial commit.
func (it *ManifestBuilder) ForCommit(vcs repositories.VCSRepository, amend bool) (*entities.CommitManifest, error) {
	working, err := it.snapshots.FromWorkingCopy(vcs.Repository())
	if err != nil {
		return nil, err
	}

	tip, err := vcs.HeadCommit()
	if errors.Is(err, entities.ErrNoHead) {
		if amend {
			return nil, entities.ErrNothingToAmend
		}
		if working == nil {
			return nil, nil //nolint:nilnil // nothing to describe
		}
		return it.ForInitialCommit(working), nil
	}
	if err != nil {
		return nil, err
	}

	previous, err := it.snapshots.FromRevision(vcs, tip.Hash)
	if err != nil {
		return nil, err
	}

	var changes []entities.ObjectChange
	if amend {
		if m := entities.DecodeManifest(tip.Message); m != nil {
			changes = append(changes, m.Changes...)
		}
	}
	changes = append(changes, comparison.Compare(previous, working).ObjectChanges()...)
	return entities.NewCommitManifest(changes, amend), nil
}
