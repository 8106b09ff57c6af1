package commands

import (
	"errors"
	"fmt"
	"io/fs"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/comparison"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// Merge is the interface for merging a branch into the current branch.
type Merge interface {
	Execute(opts MergeOptions) (*entities.MergeReport, error)
}

// MergeOptions holds the inputs of a merge.
type MergeOptions struct {
	Repository entities.Repository
	// Branch is the full, short or display name of the branch to merge.
	Branch string
}

// MergeCommand merges another branch into the current one at the level of
// model objects. Conflicting changes keep our side.
type MergeCommand struct {
	factory   repositories.VCSFactory
	models    repositories.ModelRepository
	snapshots *SnapshotLoader
	bus       *entities.EventBus
}

// NewMergeCommand creates a new MergeCommand.
func NewMergeCommand(
	factory repositories.VCSFactory,
	models repositories.ModelRepository,
	snapshots *SnapshotLoader,
	bus *entities.EventBus,
) *MergeCommand {
	return &MergeCommand{factory: factory, models: models, snapshots: snapshots, bus: bus}
}

// mergeRun carries the state of one merge through the state machine.
type mergeRun struct {
	vcs    repositories.VCSRepository
	repo   entities.Repository
	target *entities.BranchInfo
	report *entities.MergeReport
}

func (r *mergeRun) enter(state entities.MergeState) {
	logger.Debugf("[merge] %s", state)
	r.report.States = append(r.report.States, state)
}

func (r *mergeRun) finish(result entities.MergeResult) *entities.MergeReport {
	r.report.Result = result
	r.enter(entities.MergeStateDone)
	return r.report
}

func (r *mergeRun) cancel(reason string) *entities.MergeReport {
	logger.Warnf("[merge] Cancelled: %s", reason)
	r.report.Result = entities.MergeResultCancelled
	r.report.Reason = reason
	r.enter(entities.MergeStateCancelled)
	return r.report
}

// Execute runs the merge. Operational failures are returned as errors, while
// a merge that cannot produce a consistent model ends Cancelled with the
// staged merge left in place for inspection.
func (it *MergeCommand) Execute(opts MergeOptions) (*entities.MergeReport, error) {
	vcs, err := it.factory.Open(opts.Repository)
	if err != nil {
		return nil, err
	}
	defer closeVCS(vcs)

	dirty, err := vcs.HasChangesToCommit()
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, entities.ErrUncommittedChanges
	}

	target, err := vcs.Branch(opts.Branch, false)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", opts.Branch, err)
	}

	run := &mergeRun{vcs: vcs, repo: opts.Repository, target: target, report: &entities.MergeReport{}}
	run.enter(entities.MergeStateStart)

	report, done, err := it.fastForwardCheck(run)
	if err != nil || done {
		return report, err
	}
	report, err = it.fullMerge(run)
	if err != nil {
		return nil, err
	}
	if report.Result != entities.MergeResultCancelled {
		it.bus.Publish(entities.RepositoryEvent{
			Type:       entities.EventMerged,
			Repository: opts.Repository,
			Detail:     target.FullName,
		})
	}
	return report, nil
}

func (it *MergeCommand) fastForwardCheck(run *mergeRun) (*entities.MergeReport, bool, error) {
	run.enter(entities.MergeStateFastForwardCheck)

	head, err := run.vcs.HeadCommit()
	if err != nil {
		return nil, true, err
	}
	theirs, err := run.vcs.Commit(run.target.FullName)
	if err != nil {
		return nil, true, err
	}

	contained, err := run.vcs.IsMergedInto(theirs.Hash, head.Hash)
	if err != nil {
		return nil, true, err
	}
	if contained {
		logger.Infof("Already up to date with %s", run.target.DisplayName())
		run.report.Commit = head
		return run.finish(entities.MergeResultAlreadyUpToDate), true, nil
	}

	ancestor, err := run.vcs.IsMergedInto(head.Hash, theirs.Hash)
	if err != nil {
		return nil, true, err
	}
	if !ancestor {
		return nil, false, nil
	}

	if err = run.vcs.ResetToRef(theirs.Hash); err != nil {
		return nil, true, fmt.Errorf("failed to fast-forward: %w", err)
	}
	logger.Infof("Fast-forwarded to %s (%s)", run.target.DisplayName(), theirs.ShortHash())
	run.report.FastForward = true
	run.report.Commit = theirs
	it.bus.Publish(entities.RepositoryEvent{
		Type:       entities.EventMerged,
		Repository: run.repo,
		Detail:     run.target.FullName,
	})
	return run.finish(entities.MergeResultMergedOK), true, nil
}

func (it *MergeCommand) fullMerge(run *mergeRun) (*entities.MergeReport, error) {
	run.enter(entities.MergeStateFullMerge)

	staged, err := run.vcs.StageMerge(run.target.FullName)
	if err != nil {
		return nil, err
	}
	if staged == entities.StageAlreadyUpToDate {
		return run.finish(entities.MergeResultAlreadyUpToDate), nil
	}

	base, ours, theirs, err := it.loadSides(run)
	if err != nil {
		return run.cancel(err.Error()), nil
	}

	merged := ours.DeepCopy()
	if merged == nil {
		merged = theirs.DeepCopy()
	}
	if merged == nil {
		return run.cancel("neither side has a model"), nil
	}
	merged.File = run.repo.ModelFile()

	threeWay := comparison.CompareThreeWay(base, ours, theirs)
	for _, c := range threeWay.Conflicts() {
		logger.Warnf("[merge] Conflict kept ours: %s", c)
	}
	applied, err := threeWay.ApplyRight(merged)
	if err != nil {
		return run.cancel(fmt.Sprintf("failed to apply changes: %v", err)), nil
	}
	run.report.Applied = applied.Applied
	run.report.Conflicts = len(threeWay.Conflicts())

	if err = it.repairAssets(run, merged); err != nil {
		return run.cancel(err.Error()), nil
	}

	run.enter(entities.MergeStateIntegrityCheck)
	if err = it.checkIntegrity(merged); err != nil {
		return run.cancel(err.Error()), nil
	}

	run.enter(entities.MergeStateCommit)
	return it.commit(run, ours, merged)
}

func (it *MergeCommand) loadSides(run *mergeRun) (*entities.Model, *entities.Model, *entities.Model, error) {
	ours, err := it.snapshots.FromRevision(run.vcs, "HEAD")
	if err != nil {
		return nil, nil, nil, err
	}
	theirs, err := it.snapshots.FromRevision(run.vcs, run.target.FullName)
	if err != nil {
		return nil, nil, nil, err
	}
	baseHash, err := run.vcs.MergeBase("HEAD", run.target.FullName)
	if err != nil {
		return nil, nil, nil, err
	}
	var base *entities.Model
	if baseHash != "" {
		if base, err = it.snapshots.FromRevision(run.vcs, baseHash); err != nil {
			return nil, nil, nil, err
		}
	}
	return base, ours, theirs, nil
}

// repairAssets copies referenced assets that the combined working tree lacks
// from the merged branch.
func (it *MergeCommand) repairAssets(run *mergeRun, merged *entities.Model) error {
	store := it.models.Assets(merged)
	for _, path := range merged.ImagePaths() {
		_, found, err := store.GetBytes(path)
		if err != nil {
			return err
		}
		if found {
			continue
		}
		data, err := run.vcs.FileContents(run.target.FullName, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		logger.Debugf("[merge] Restoring asset %s", path)
		if err = store.PutBytes(path, data); err != nil {
			return err
		}
	}
	return nil
}

func (it *MergeCommand) checkIntegrity(merged *entities.Model) error {
	store := it.models.Assets(merged)
	for _, path := range merged.ImagePaths() {
		_, found, err := store.GetBytes(path)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: missing asset %s", entities.ErrIntegrity, path)
		}
	}
	return it.models.CheckIntegrity(merged)
}

func (it *MergeCommand) commit(run *mergeRun, ours, merged *entities.Model) (*entities.MergeReport, error) {
	if err := it.models.Save(merged); err != nil {
		return nil, err
	}

	current, err := run.vcs.CurrentBranch()
	if err != nil {
		return nil, err
	}
	message := mergeMessage(run.target, current)
	manifest := entities.NewCommitManifest(comparison.Compare(ours, merged).ObjectChanges(), false)
	if message, err = entities.AppendManifest(message, manifest); err != nil {
		return nil, err
	}

	commit, err := run.vcs.CommitMerge(message)
	if err != nil {
		return nil, err
	}
	logger.Infof("Merged %s into %s (%s)", run.target.DisplayName(), current, commit.ShortHash())
	run.report.Commit = commit

	result := entities.MergeResultMergedOK
	if run.report.Conflicts > 0 {
		result = entities.MergeResultMergedWithConflictsResolved
	}
	return run.finish(result), nil
}

func mergeMessage(target *entities.BranchInfo, current string) string {
	if target.Remote {
		return fmt.Sprintf("Merge remote-tracking branch '%s' into '%s'", target.DisplayName(), current)
	}
	return fmt.Sprintf("Merge branch '%s' into '%s'", target.ShortName, current)
}
