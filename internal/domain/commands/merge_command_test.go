//go:build unit

package commands_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/test/domain/entitybuilders"
)

const featureRef = "refs/heads/feature"

func newMergeFixture(t *testing.T) *commitFixture {
	t.Helper()
	f := newCommitFixture(t)
	f.vcs.CurrentName = "main"
	f.vcs.Head = &entities.CommitInfo{Hash: "ours"}
	f.vcs.Commits[featureRef] = &entities.CommitInfo{Hash: "theirs"}
	f.vcs.Branches = map[string]*entities.BranchInfo{
		"feature": {FullName: featureRef, ShortName: "feature"},
	}
	return f
}

func (f *commitFixture) mergeCommand() *commands.MergeCommand {
	return commands.NewMergeCommand(f.factory, f.models, commands.NewSnapshotLoader(f.models), f.bus)
}

func (f *commitFixture) diverge(base, ours, theirs *entities.Model) {
	f.vcs.StageResult = entities.StageMerged
	f.vcs.Base = "base"
	f.snapshots["base"] = base
	f.snapshots["HEAD"] = ours
	f.snapshots[featureRef] = theirs
	f.models.Put(f.repo.ModelFile(), ours)
	f.vcs.MergeCommit = &entities.CommitInfo{Hash: "merge", ParentHashes: []string{"ours", "theirs"}}
}

func TestMergeCommand(t *testing.T) {
	t.Parallel()

	t.Run("should refuse to merge into a dirty working copy", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)
		f.vcs.Dirty = true

		// when
		report, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "feature"})

		// then
		require.ErrorIs(t, err, entities.ErrUncommittedChanges)
		assert.Nil(t, report)
		assert.Empty(t, f.vcs.StagedRevs)
		assert.Empty(t, f.vcs.ResetRefs)
	})

	t.Run("should fail for an unknown branch", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)

		// when
		_, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "nope"})

		// then
		require.ErrorIs(t, err, entities.ErrBranchNotFound)
	})

	t.Run("should do nothing when the branch is already contained", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)
		f.vcs.Merged[[2]string{"theirs", "ours"}] = true

		// when
		report, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "feature"})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeResultAlreadyUpToDate, report.Result)
		assert.Equal(t, "ours", report.Commit.Hash)
		assert.Equal(t, []entities.MergeState{
			entities.MergeStateStart, entities.MergeStateFastForwardCheck, entities.MergeStateDone,
		}, report.States)
		assert.Empty(t, f.vcs.StagedRevs)
		assert.Empty(t, f.events)
	})

	t.Run("should fast-forward when our tip is an ancestor of theirs", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)
		f.vcs.Merged[[2]string{"ours", "theirs"}] = true

		// when
		report, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "feature"})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeResultMergedOK, report.Result)
		assert.True(t, report.FastForward)
		assert.Equal(t, []string{"theirs"}, f.vcs.ResetRefs)
		assert.Empty(t, f.vcs.MergeMessages)
		require.Len(t, f.events, 1)
		assert.Equal(t, entities.EventMerged, f.events[0].Type)
	})

	t.Run("should combine independent changes of both sides", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)
		base := sampleModel()
		f.diverge(base, renamed(base, "actor", "Client"), renamed(base, "role", "Purchaser"))

		// when
		report, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "feature"})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeResultMergedOK, report.Result)
		assert.Zero(t, report.Conflicts)
		assert.Positive(t, report.Applied)
		assert.Equal(t, "merge", report.Commit.Hash)
		assert.Equal(t, []entities.MergeState{
			entities.MergeStateStart, entities.MergeStateFastForwardCheck, entities.MergeStateFullMerge,
			entities.MergeStateIntegrityCheck, entities.MergeStateCommit, entities.MergeStateDone,
		}, report.States)

		require.NotEmpty(t, f.models.Saved)
		saved := f.models.Saved[len(f.models.Saved)-1]
		assert.Equal(t, "Client", saved.FindByID("actor").Name)
		assert.Equal(t, "Purchaser", saved.FindByID("role").Name)

		require.Len(t, f.vcs.MergeMessages, 1)
		message := f.vcs.MergeMessages[0]
		assert.True(t, strings.HasPrefix(message, "Merge branch 'feature' into 'main'"))
		assert.Equal(t, []entities.ChangeKind{entities.ChangeModified}, entities.DecodeManifest(message).ChangesFor("role"))
		require.Len(t, f.events, 1)
		assert.Equal(t, featureRef, f.events[0].Detail)
	})

	t.Run("should keep our side of conflicting changes", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)
		base := sampleModel()
		f.diverge(base, renamed(base, "actor", "Client"), renamed(base, "actor", "Patron"))

		// when
		report, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "feature"})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeResultMergedWithConflictsResolved, report.Result)
		assert.Positive(t, report.Conflicts)
		saved := f.models.Saved[len(f.models.Saved)-1]
		assert.Equal(t, "Client", saved.FindByID("actor").Name)
	})

	t.Run("should keep an element they deleted while we started to reference it", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)
		pair := func() *entitybuilders.ModelBuilder {
			return entitybuilders.NewModelBuilder().
				WithElement("actor", "BusinessActor", "Customer").
				WithElement("role", "BusinessRole", "Buyer")
		}
		ours := pair().WithRelationship("serve", "Serving", "actor", "role").BuildModel()
		theirs := pair().BuildModel()
		theirs.FindByID(entitybuilders.FolderID("business")).RemoveChild("actor")
		f.diverge(pair().BuildModel(), ours, theirs)

		// when
		report, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "feature"})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeResultMergedWithConflictsResolved, report.Result)
		assert.Equal(t, 1, report.Conflicts)
		saved := f.models.Saved[len(f.models.Saved)-1]
		assert.NotNil(t, saved.FindByID("actor"))
		assert.NotNil(t, saved.FindByID("serve"))
	})

	t.Run("should restore assets the merged model needs from their side", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)
		base := sampleModel()
		theirs := renamed(base, "role", "Purchaser")
		theirs.FindByID("role").ImagePath = "images/role.png"
		f.diverge(base, renamed(base, "actor", "Client"), theirs)
		f.vcs.Files = map[string][]byte{"images/role.png": []byte("png")}

		// when
		report, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "feature"})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeResultMergedOK, report.Result)
		data, found, getErr := f.models.Assets(f.models.Saved[0]).GetBytes("images/role.png")
		require.NoError(t, getErr)
		assert.True(t, found)
		assert.Equal(t, []byte("png"), data)
	})

	t.Run("should cancel when the merged model fails its integrity check", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)
		base := sampleModel()
		f.diverge(base, renamed(base, "actor", "Client"), renamed(base, "role", "Purchaser"))
		f.models.IntegrityErr = errors.Join(entities.ErrIntegrity, errors.New("dangling relationship"))

		// when
		report, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "feature"})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeResultCancelled, report.Result)
		assert.Contains(t, report.Reason, "dangling relationship")
		assert.Equal(t, entities.MergeStateCancelled, report.States[len(report.States)-1])
		assert.Empty(t, f.vcs.MergeMessages)
		assert.Empty(t, f.models.Saved)
		assert.Empty(t, f.events)
	})

	t.Run("should report an up to date staging as already merged", func(t *testing.T) {
		t.Parallel()

		// given
		f := newMergeFixture(t)
		f.vcs.StageResult = entities.StageAlreadyUpToDate

		// when
		report, err := f.mergeCommand().Execute(commands.MergeOptions{Repository: f.repo, Branch: "feature"})

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.MergeResultAlreadyUpToDate, report.Result)
		assert.Equal(t, []string{featureRef}, f.vcs.StagedRevs)
	})
}

func TestMergeMessage(t *testing.T) {
	t.Parallel()

	t.Run("should name a local branch by its short name", func(t *testing.T) {
		t.Parallel()

		// given
		target := &entities.BranchInfo{FullName: featureRef, ShortName: "feature"}

		// when
		message := commands.MergeMessage(target, "main")

		// then
		assert.Equal(t, "Merge branch 'feature' into 'main'", message)
	})

	t.Run("should name a remote-tracking branch with its remote", func(t *testing.T) {
		t.Parallel()

		// given
		target := &entities.BranchInfo{FullName: "refs/remotes/origin/main", ShortName: "main", Remote: true}

		// when
		message := commands.MergeMessage(target, "main")

		// then
		assert.Equal(t, "Merge remote-tracking branch 'origin/main' into 'main'", message)
	})
}
