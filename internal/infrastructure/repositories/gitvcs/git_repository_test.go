//go:build integration

package gitvcs_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/infrastructure/repositories/gitvcs"
	"github.com/rios0rios0/modelgit/test/domain/entitybuilders"
	"github.com/rios0rios0/modelgit/test/infrastructure/gitfixture"
)

func sampleModel() *entities.Model {
	return entitybuilders.NewModelBuilder().
		WithElement("actor", "BusinessActor", "Customer").
		WithElement("role", "BusinessRole", "Buyer").
		BuildModel()
}

func renamed(model *entities.Model, id, name string) *entities.Model {
	c := model.DeepCopy()
	c.FindByID(id).Name = name
	return c
}

func TestCommitChanges(t *testing.T) {
	t.Parallel()

	t.Run("should return nil when the working copy is clean", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		_, vcs := env.InitRepository(t, sampleModel())

		// when
		commit, err := vcs.CommitChanges("Nothing", false)

		// then
		require.NoError(t, err)
		assert.Nil(t, commit)
	})

	t.Run("should refuse to amend before the first commit", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo := entities.NewRepository(filepath.Join(t.TempDir(), "work"))
		vcs, err := env.Factory.Init(repo, sampleModel())
		require.NoError(t, err)
		defer vcs.Close()

		// when
		commit, err := vcs.CommitChanges("Amend", true)

		// then
		require.ErrorIs(t, err, entities.ErrNothingToAmend)
		assert.Nil(t, commit)
	})

	t.Run("should replace the tip when amending", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		first := env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Rename actor")
		env.SaveModel(t, repo, renamed(sampleModel(), "actor", "Patron"))

		// when
		amended, err := vcs.CommitChanges("Rename actor again", true)

		// then
		require.NoError(t, err)
		require.NotNil(t, amended)
		assert.NotEqual(t, first.Hash, amended.Hash)
		assert.Equal(t, first.ParentHashes, amended.ParentHashes)
		count, err := vcs.CommitCount("HEAD")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		dirty, err := vcs.HasChangesToCommit()
		require.NoError(t, err)
		assert.False(t, dirty)
	})

	t.Run("should record the configured author", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())

		// when
		_, vcs := env.InitRepository(t, sampleModel())

		// then
		head, err := vcs.HeadCommit()
		require.NoError(t, err)
		assert.Equal(t, "Tester", head.Author.Name)
		assert.Equal(t, "tester@example.com", head.Author.Email)
		assert.Equal(t, "Initial commit", head.Subject())
	})
}

//nolint:paralleltest // the commit clock is package state
func TestCommitClock(t *testing.T) {
	// given
	at := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	gitvcs.FreezeClock(t, at)
	env := gitfixture.NewEnv(gitfixture.Settings())

	// when
	_, vcs := env.InitRepository(t, sampleModel())

	// then
	head, err := vcs.HeadCommit()
	require.NoError(t, err)
	assert.True(t, head.Committer.When.Equal(at))
}

func TestHistoryQueries(t *testing.T) {
	t.Parallel()

	t.Run("should count, limit and relate commits", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		second := env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Second")
		third := env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Patron"), "Third")

		// when
		count, countErr := vcs.CommitCount("HEAD")
		limited, logErr := vcs.Log("HEAD", 2)
		merged, mergedErr := vcs.IsMergedInto(second.Hash, third.Hash)
		reverse, reverseErr := vcs.IsMergedInto(third.Hash, second.Hash)
		atHead, atHeadErr := vcs.IsAtHead(third.Hash)
		parents, parentErr := vcs.ParentCount("HEAD~2")

		// then
		require.NoError(t, countErr)
		require.NoError(t, logErr)
		require.NoError(t, mergedErr)
		require.NoError(t, reverseErr)
		require.NoError(t, atHeadErr)
		require.NoError(t, parentErr)
		assert.Equal(t, 3, count)
		require.Len(t, limited, 2)
		assert.Equal(t, third.Hash, limited[0].Hash)
		assert.Equal(t, second.Hash, limited[1].Hash)
		assert.True(t, merged)
		assert.False(t, reverse)
		assert.True(t, atHead)
		assert.Zero(t, parents)
	})

	t.Run("should report a missing file as not existing", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		_, vcs := env.InitRepository(t, sampleModel())

		// when
		_, missingErr := vcs.FileContents("HEAD", "images/none.png")
		data, err := vcs.FileContents("HEAD", entities.IgnoreFileName)

		// then
		require.ErrorIs(t, missingErr, fs.ErrNotExist)
		require.NoError(t, err)
		assert.Contains(t, string(data), ".DS_Store")
	})

	t.Run("should extract the full tree of a revision", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Rename")
		dir := t.TempDir()

		// when
		err := vcs.ExtractCommit("HEAD~1", dir)

		// then
		require.NoError(t, err)
		model, loadErr := env.Models.Load(filepath.Join(dir, entities.ModelFileName))
		require.NoError(t, loadErr)
		assert.Equal(t, "Customer", model.FindByID("actor").Name)
	})
}

func TestResetToRef(t *testing.T) {
	t.Parallel()

	t.Run("should discard edits and untracked files", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		env.SaveModel(t, repo, renamed(sampleModel(), "actor", "Client"))
		stray := filepath.Join(repo.WorkingFolder(), "stray.txt")
		require.NoError(t, os.WriteFile(stray, []byte("noise"), 0o644))

		// when
		err := vcs.ResetToRef("HEAD")

		// then
		require.NoError(t, err)
		assert.NoFileExists(t, stray)
		assert.Equal(t, "Customer", env.LoadModel(t, repo).FindByID("actor").Name)
		dirty, dirtyErr := vcs.HasChangesToCommit()
		require.NoError(t, dirtyErr)
		assert.False(t, dirty)
	})
}

func TestStageMerge(t *testing.T) {
	t.Parallel()

	t.Run("should commit a merge with two parents and clear the merge state", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		gitfixture.Checkout(t, repo, "feature", true)
		feature := env.Commit(t, repo, vcs, renamed(sampleModel(), "role", "Purchaser"), "Rename role")
		gitfixture.Checkout(t, repo, "main", false)
		env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Rename actor")

		// when
		staged, stageErr := vcs.StageMerge("feature")
		mergingAfterStage := vcs.IsMerging()
		commit, commitErr := vcs.CommitMerge("Merge branch 'feature' into 'main'")

		// then
		require.NoError(t, stageErr)
		require.NoError(t, commitErr)
		assert.Equal(t, entities.StageMerged, staged)
		assert.True(t, mergingAfterStage)
		assert.False(t, vcs.IsMerging())
		require.Len(t, commit.ParentHashes, 2)
		assert.Equal(t, feature.Hash, commit.ParentHashes[1])
		parents, err := vcs.ParentCount("HEAD")
		require.NoError(t, err)
		assert.Equal(t, 2, parents)
	})

	t.Run("should take their side of files only they changed", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		gitfixture.Checkout(t, repo, "feature", true)
		asset := filepath.Join(repo.AssetsFolder(), "logo.png")
		require.NoError(t, os.MkdirAll(repo.AssetsFolder(), 0o755))
		require.NoError(t, os.WriteFile(asset, []byte("png"), 0o644))
		_, err := vcs.CommitChanges("Add logo", false)
		require.NoError(t, err)
		gitfixture.Checkout(t, repo, "main", false)
		env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Rename actor")

		// when
		_, err = vcs.StageMerge("feature")

		// then
		require.NoError(t, err)
		assert.FileExists(t, asset)
		assert.Equal(t, "Client", env.LoadModel(t, repo).FindByID("actor").Name)
	})

	t.Run("should report a contained branch as up to date", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		gitfixture.Checkout(t, repo, "old", true)
		gitfixture.Checkout(t, repo, "main", false)
		env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Rename actor")

		// when
		staged, err := vcs.StageMerge("old")

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.StageAlreadyUpToDate, staged)
		assert.False(t, vcs.IsMerging())
	})

	t.Run("should forget the staged merge on abort", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		gitfixture.Checkout(t, repo, "feature", true)
		env.Commit(t, repo, vcs, renamed(sampleModel(), "role", "Purchaser"), "Rename role")
		gitfixture.Checkout(t, repo, "main", false)
		env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Rename actor")
		_, err := vcs.StageMerge("feature")
		require.NoError(t, err)

		// when
		err = vcs.AbortMerge()

		// then
		require.NoError(t, err)
		assert.False(t, vcs.IsMerging())
		count, countErr := vcs.CommitCount("HEAD")
		require.NoError(t, countErr)
		assert.Equal(t, 2, count)
	})
}

func TestBranchStatus(t *testing.T) {
	t.Parallel()

	t.Run("should treat the trunk as primary and merged", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		_, vcs := env.InitRepository(t, sampleModel())

		// when
		status, err := vcs.BranchStatus()

		// then
		require.NoError(t, err)
		require.NotNil(t, status.CurrentLocalBranch)
		trunk := status.CurrentLocalBranch
		assert.Equal(t, "refs/heads/main", trunk.FullName)
		assert.True(t, trunk.IsPrimaryBranch)
		assert.True(t, trunk.IsMerged)
		assert.True(t, trunk.IsRefAtHead)
		assert.False(t, trunk.HasRemoteRef)
		assert.Empty(t, status.RemoteBranches())
	})

	t.Run("should not treat the legacy trunk as primary when the default is main", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		gitfixture.Checkout(t, repo, "master", true)

		// when
		info, err := vcs.Branch("master", true)

		// then
		require.NoError(t, err)
		assert.False(t, info.IsPrimaryBranch)
		assert.True(t, info.IsCurrent)
	})

	t.Run("should treat the legacy trunk as primary when it is the designated default", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		gitfixture.Checkout(t, repo, "master", true)
		raw, err := git.PlainOpen(repo.WorkingFolder())
		require.NoError(t, err)
		cfg, err := raw.Config()
		require.NoError(t, err)
		cfg.Init.DefaultBranch = "master"
		require.NoError(t, raw.SetConfig(cfg))

		// when
		info, err := vcs.Branch("master", true)

		// then
		require.NoError(t, err)
		assert.True(t, info.IsPrimaryBranch)
		assert.True(t, info.IsCurrent)
	})

	t.Run("should flag a branch whose tip another branch reaches as merged", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		gitfixture.Checkout(t, repo, "feature", true)
		env.Commit(t, repo, vcs, renamed(sampleModel(), "role", "Purchaser"), "Rename role")
		gitfixture.Checkout(t, repo, "done", true)
		gitfixture.Checkout(t, repo, "main", false)
		gitfixture.Checkout(t, repo, "open", true)
		env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Rename actor")

		// when
		feature, featureErr := vcs.Branch("feature", true)
		open, openErr := vcs.Branch("open", true)

		// then
		require.NoError(t, featureErr)
		require.NoError(t, openErr)
		assert.True(t, feature.IsMerged)
		assert.False(t, open.IsMerged)
	})

	t.Run("should only fill identity in a light snapshot", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		_, vcs := env.InitRepository(t, sampleModel())

		// when
		info, err := vcs.Branch("main", false)

		// then
		require.NoError(t, err)
		assert.False(t, info.Full)
		assert.True(t, info.IsRefAtHead)
		assert.Nil(t, info.LatestCommit)
		assert.False(t, info.IsPrimaryBranch)
	})

	t.Run("should fail to resolve an unknown branch", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		_, vcs := env.InitRepository(t, sampleModel())

		// when
		_, err := vcs.Branch("nope", true)

		// then
		require.ErrorIs(t, err, entities.ErrBranchNotFound)
	})

	t.Run("should fail to refresh once the repository is gone", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		info, err := vcs.Branch("main", true)
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(repo.WorkingFolder()))

		// when
		err = vcs.RefreshBranch(info)

		// then
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("should refuse to delete the current branch", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		_, vcs := env.InitRepository(t, sampleModel())

		// when
		err := vcs.DeleteLocalBranch("main")

		// then
		require.Error(t, err)
		_, branchErr := vcs.Branch("main", false)
		require.NoError(t, branchErr)
	})
}

func TestTags(t *testing.T) {
	t.Parallel()

	t.Run("should list lightweight and annotated tags and flag orphans", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		repo, vcs := env.InitRepository(t, sampleModel())
		gitfixture.Tag(t, repo, "v1", "")
		env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Rename actor")
		gitfixture.Tag(t, repo, "v2", "Second release\n\nWith notes")
		require.NoError(t, vcs.ResetToRef("HEAD~1"))

		// when
		tags, err := vcs.Tags()

		// then
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, "v1", tags[0].ShortName)
		assert.False(t, tags[0].IsAnnotated())
		assert.False(t, tags[0].IsOrphaned)
		assert.Equal(t, "v2", tags[1].ShortName)
		require.True(t, tags[1].IsAnnotated())
		assert.Equal(t, "Tester", tags[1].Annotation.Tagger.Name)
		assert.True(t, tags[1].IsOrphaned)
		assert.Equal(t, "Rename actor", tags[1].Commit.Subject())
	})
}

func TestRemoteSync(t *testing.T) {
	t.Parallel()

	t.Run("should push, clone and report divergence after fetching", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		remote := gitfixture.NewBareRemote(t)
		repo, vcs := env.InitRepository(t, sampleModel())
		require.NoError(t, vcs.SetRemoteURL(remote))
		pushed, err := vcs.Push(context.Background(), nil, nil)
		require.NoError(t, err)
		cloneRepo, cloneVCS := env.Clone(t, remote)
		env.Commit(t, cloneRepo, cloneVCS, renamed(sampleModel(), "role", "Purchaser"), "Remote change")
		_, err = cloneVCS.Push(context.Background(), nil, nil)
		require.NoError(t, err)
		env.Commit(t, repo, vcs, renamed(sampleModel(), "actor", "Client"), "Local change")

		// when
		fetched, fetchErr := vcs.Fetch(context.Background(), nil, nil, false)
		info, branchErr := vcs.Branch("main", true)

		// then
		require.NoError(t, fetchErr)
		require.NoError(t, branchErr)
		require.Len(t, pushed.Updates, 1)
		assert.Equal(t, "refs/heads/main", pushed.Updates[0].Name)
		assert.False(t, fetched.UpToDate)
		assert.Equal(t, 1, info.Ahead)
		assert.Equal(t, 1, info.Behind)
		assert.True(t, info.HasUnpushedCommits)
		assert.True(t, info.HasRemoteCommits)
		assert.True(t, info.HasRemoteRef)
	})

	t.Run("should report an unchanged remote as up to date", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		remote := gitfixture.NewBareRemote(t)
		_, vcs := env.InitRepository(t, sampleModel())
		require.NoError(t, vcs.SetRemoteURL(remote))
		_, err := vcs.Push(context.Background(), nil, nil)
		require.NoError(t, err)

		// when
		pushed, pushErr := vcs.Push(context.Background(), nil, nil)
		fetched, fetchErr := vcs.Fetch(context.Background(), nil, nil, false)

		// then
		require.NoError(t, pushErr)
		require.NoError(t, fetchErr)
		assert.True(t, pushed.UpToDate)
		assert.True(t, fetched.UpToDate)
	})

	t.Run("should fail to push without a remote", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		_, vcs := env.InitRepository(t, sampleModel())

		// when
		_, err := vcs.Push(context.Background(), nil, nil)

		// then
		require.ErrorIs(t, err, entities.ErrNoRemote)
	})

	t.Run("should flag a branch deleted on the remote and prune it elsewhere", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		remote := gitfixture.NewBareRemote(t)
		_, vcs := env.InitRepository(t, sampleModel())
		require.NoError(t, vcs.SetRemoteURL(remote))
		_, err := vcs.Push(context.Background(), nil, nil)
		require.NoError(t, err)
		cloneRepo, cloneVCS := env.Clone(t, remote)
		gitfixture.Checkout(t, cloneRepo, "feature", true)
		env.Commit(t, cloneRepo, cloneVCS, renamed(sampleModel(), "role", "Purchaser"), "Feature change")
		_, err = cloneVCS.Push(context.Background(), nil, nil)
		require.NoError(t, err)
		_, err = vcs.Fetch(context.Background(), nil, nil, false)
		require.NoError(t, err)

		// when
		deleteErr := cloneVCS.DeleteRemoteBranch(context.Background(), "feature", nil)
		deleted, deletedErr := cloneVCS.Branch("feature", true)
		pruned, pruneErr := vcs.Fetch(context.Background(), nil, nil, true)

		// then
		require.NoError(t, deleteErr)
		require.NoError(t, deletedErr)
		require.NoError(t, pruneErr)
		assert.True(t, deleted.IsRemoteDeleted)
		assert.False(t, deleted.HasRemoteRef)
		assert.Equal(t, []string{"refs/remotes/origin/feature"}, pruned.Pruned)
		_, err = vcs.Branch("origin/feature", false)
		require.ErrorIs(t, err, entities.ErrBranchNotFound)
	})

	t.Run("should update and remove the remote URL", func(t *testing.T) {
		t.Parallel()

		// given
		env := gitfixture.NewEnv(gitfixture.Settings())
		_, vcs := env.InitRepository(t, sampleModel())
		require.NoError(t, vcs.SetRemoteURL("https://example.com/a.git"))

		// when
		updateErr := vcs.SetRemoteURL("https://example.com/b.git")
		updated, _ := vcs.RemoteURL()
		removeErr := vcs.SetRemoteURL("")
		removed, _ := vcs.RemoteURL()

		// then
		require.NoError(t, updateErr)
		require.NoError(t, removeErr)
		assert.Equal(t, "https://example.com/b.git", updated)
		assert.Empty(t, removed)
	})
}
