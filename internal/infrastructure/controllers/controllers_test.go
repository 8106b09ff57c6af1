//go:build unit

package controllers_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/infrastructure/controllers"
	"github.com/rios0rios0/modelgit/test/domain/commanddoubles"
)

// newCommand builds a cobra command for the controller the way main does,
// with the repository flag set and output captured.
func newCommand(t *testing.T, controller entities.Controller, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	bind := controller.GetBind()
	cmd := &cobra.Command{Use: bind.Use, Short: bind.Short, Run: controller.Execute}
	cmd.Flags().StringP(controllers.RepositoryFlag, "C", "", "")
	if fc, ok := controller.(entities.FlagsController); ok {
		fc.AddFlags(cmd)
	}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	// cobra falls back to os.Args for nil args
	cmd.SetArgs(append([]string{}, args...))
	return cmd, out
}

func TestCommitController(t *testing.T) {
	t.Parallel()

	t.Run("should pass message, amend and repository to the command", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		stub := &commanddoubles.StubCommitCommand{
			Result: &entities.CommitInfo{Hash: "0123456789abcdef", Message: "Rename actor"},
		}
		cmd, out := newCommand(t, controllers.NewCommitController(stub), "-C", dir, "-m", "Rename actor", "--amend")

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, stub.ExecuteCallCount)
		assert.Equal(t, "Rename actor", stub.LastOpts.Message)
		assert.True(t, stub.LastOpts.Amend)
		assert.True(t, stub.LastOpts.Repository.Equal(entities.NewRepository(dir)))
		assert.Equal(t, "[0123456] Rename actor\n", out.String())
	})

	t.Run("should say so when there is nothing to commit", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubCommitCommand{}
		cmd, out := newCommand(t, controllers.NewCommitController(stub), "-m", "Edit")

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		assert.Equal(t, "Nothing to commit\n", out.String())
	})

	t.Run("should print nothing when the command fails", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubCommitCommand{ExecuteErr: errors.New("boom")}
		cmd, out := newCommand(t, controllers.NewCommitController(stub), "-m", "Edit")

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		assert.Empty(t, out.String())
	})
}

func TestMergeController(t *testing.T) {
	t.Parallel()

	t.Run("should report the merge outcome", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubMergeCommand{Report: &entities.MergeReport{
			Result:    entities.MergeResultMergedWithConflictsResolved,
			Applied:   3,
			Conflicts: 1,
			Commit:    &entities.CommitInfo{Hash: "abcdef0123456789"},
		}}
		cmd, out := newCommand(t, controllers.NewMergeController(stub), "origin/main")

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		assert.Equal(t, "origin/main", stub.LastOpts.Branch)
		assert.Equal(t, "merged with conflicts resolved (abcdef0): 3 changes applied, 1 conflicts\n", out.String())
	})

	t.Run("should report a fast-forward", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubMergeCommand{Report: &entities.MergeReport{
			Result:      entities.MergeResultMergedOK,
			FastForward: true,
			Commit:      &entities.CommitInfo{Hash: "abcdef0123456789"},
		}}
		cmd, out := newCommand(t, controllers.NewMergeController(stub), "feature")

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		assert.Equal(t, "Fast-forward to abcdef0\n", out.String())
	})

	t.Run("should report a cancelled merge with its reason", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubMergeCommand{Report: &entities.MergeReport{
			Result: entities.MergeResultCancelled,
			Reason: "missing asset images/logo.png",
		}}
		cmd, out := newCommand(t, controllers.NewMergeController(stub), "feature")

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		assert.Equal(t, "Merge cancelled: missing asset images/logo.png\n", out.String())
	})

	t.Run("should not merge without a branch name", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubMergeCommand{}
		cmd, _ := newCommand(t, controllers.NewMergeController(stub))

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		assert.Zero(t, stub.ExecuteCallCount)
	})
}

func TestStatusController(t *testing.T) {
	t.Parallel()

	t.Run("should list branches with their flags", func(t *testing.T) {
		t.Parallel()

		// given
		repo := entities.NewRepository(filepath.Join(t.TempDir(), "work"))
		head := &entities.CommitInfo{Hash: "1234567890", Message: "Rename actor"}
		stub := &commanddoubles.StubStatusCommand{Report: &commands.StatusReport{
			Repository: repo,
			Head:       head,
			RemoteURL:  "https://example.com/model.git",
			Dirty:      true,
			Branches: &entities.BranchStatus{Branches: []*entities.BranchInfo{
				{
					FullName: "refs/heads/main", ShortName: "main", Full: true, IsCurrent: true,
					IsPrimaryBranch: true, IsMerged: true, Ahead: 2, LatestCommit: head,
				},
				{
					FullName: "refs/heads/old", ShortName: "old", Full: true,
					IsMerged: true, IsRemoteDeleted: true, LatestCommit: head,
				},
				{
					FullName: "refs/remotes/origin/main", ShortName: "main", Remote: true, Full: true,
					IsPrimaryBranch: true, IsMerged: true, Behind: 1, LatestCommit: head,
				},
			}},
		}}
		cmd, out := newCommand(t, controllers.NewStatusController(stub))

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		text := out.String()
		assert.Contains(t, text, "Remote:     https://example.com/model.git\n")
		assert.Contains(t, text, "HEAD:       1234567 Rename actor\n")
		assert.Contains(t, text, "Uncommitted changes\n")
		assert.Regexp(t, `\* main +\[primary, ahead 2\]`, text)
		assert.Regexp(t, `  old +\[merged, remote deleted\]`, text)
		assert.Regexp(t, `  origin/main +\[primary, behind 1\]`, text)
	})

	t.Run("should report a merge in progress before dirtiness", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		report := &commands.StatusReport{
			Repository: entities.NewRepository(t.TempDir()),
			Dirty:      true,
			Merging:    true,
			Branches:   &entities.BranchStatus{},
		}

		// when
		controllers.WriteStatus(&out, report)

		// then
		assert.Contains(t, out.String(), "A merge is in progress\n")
		assert.NotContains(t, out.String(), "Uncommitted changes")
	})
}

func TestLogController(t *testing.T) {
	t.Parallel()

	t.Run("should pass the revision, limit and object filter", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubLogCommand{Entries: []*commands.LogEntry{
			{Commit: &entities.CommitInfo{
				Hash:    "feedface00000000",
				Message: "Rename actor",
				Author:  entities.Signature{Name: "Tester"},
			}},
		}}
		cmd, out := newCommand(t, controllers.NewLogController(stub), "feature", "-n", "5", "--object", "actor")

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		assert.Equal(t, "feature", stub.LastOpts.Revision)
		assert.Equal(t, 5, stub.LastOpts.Limit)
		assert.Equal(t, "actor", stub.LastOpts.ObjectID)
		assert.Contains(t, out.String(), "feedfac ")
		assert.Contains(t, out.String(), "<Tester> Rename actor\n")
	})

	t.Run("should default to twenty commits", func(t *testing.T) {
		t.Parallel()

		// given
		stub := &commanddoubles.StubLogCommand{}
		cmd, _ := newCommand(t, controllers.NewLogController(stub))

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		assert.Equal(t, 20, stub.LastOpts.Limit)
		assert.Empty(t, stub.LastOpts.Revision)
	})
}

func TestTagsController(t *testing.T) {
	t.Parallel()

	t.Run("should list tags and flag orphans", func(t *testing.T) {
		t.Parallel()

		// given
		commit := &entities.CommitInfo{Hash: "aaaaaaa0000000", Message: "Release"}
		stub := &commanddoubles.StubStatusCommand{TagList: []*entities.TagInfo{
			{ShortName: "v1", Commit: commit},
			{
				ShortName:  "v2",
				Commit:     commit,
				IsOrphaned: true,
				Annotation: &entities.TagAnnotation{Message: "Second release\n\nNotes"},
			},
		}}
		cmd, out := newCommand(t, controllers.NewTagsController(stub))

		// when
		err := cmd.Execute()

		// then
		require.NoError(t, err)
		text := out.String()
		assert.Contains(t, text, "v1")
		assert.Contains(t, text, "Second release")
		assert.NotContains(t, text, "Notes")
		assert.Contains(t, text, "orphaned")
	})
}
