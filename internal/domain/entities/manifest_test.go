//go:build unit

package entities_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

func change(id string, kind entities.ChangeKind) entities.ObjectChange {
	return entities.ObjectChange{ObjectID: id, Kind: kind}
}

func TestReduceChanges(t *testing.T) {
	t.Parallel()

	t.Run("should cancel added and deleted for the same object", func(t *testing.T) {
		// given
		changes := []entities.ObjectChange{
			change("a", entities.ChangeAdded),
			change("b", entities.ChangeModified),
			change("a", entities.ChangeDeleted),
		}

		// when
		reduced := entities.ReduceChanges(changes)

		// then
		assert.Equal(t, []entities.ObjectChange{change("b", entities.ChangeModified)}, reduced)
	})

	t.Run("should let added subsume modified and moved", func(t *testing.T) {
		// given
		changes := []entities.ObjectChange{
			change("a", entities.ChangeModified),
			change("a", entities.ChangeAdded),
			change("a", entities.ChangeMoved),
		}

		// when
		reduced := entities.ReduceChanges(changes)

		// then
		assert.Equal(t, []entities.ObjectChange{change("a", entities.ChangeAdded)}, reduced)
	})

	t.Run("should keep modified and moved together and drop duplicates", func(t *testing.T) {
		// given
		changes := []entities.ObjectChange{
			change("a", entities.ChangeMoved),
			change("a", entities.ChangeModified),
			change("a", entities.ChangeModified),
		}

		// when
		reduced := entities.ReduceChanges(changes)

		// then
		assert.Equal(t, []entities.ObjectChange{
			change("a", entities.ChangeModified),
			change("a", entities.ChangeMoved),
		}, reduced)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		// given
		changes := []entities.ObjectChange{
			change("x", entities.ChangeDeleted),
			change("y", entities.ChangeMoved),
			change("z", entities.ChangeAdded),
			change("y", entities.ChangeModified),
			change("x", entities.ChangeModified),
		}

		// when
		once := entities.ReduceChanges(changes)
		twice := entities.ReduceChanges(once)

		// then
		assert.Equal(t, once, twice)
	})
}

func TestAppendAndDecodeManifest(t *testing.T) {
	t.Parallel()

	t.Run("should decode the manifest that was appended to a message", func(t *testing.T) {
		// given
		manifest := entities.NewCommitManifest([]entities.ObjectChange{
			change("e1", entities.ChangeAdded),
			change("e2", entities.ChangeModified),
		}, false)

		// when
		message, err := entities.AppendManifest("Add actors\n\nSome details", manifest)
		decoded := entities.DecodeManifest(message)

		// then
		require.NoError(t, err)
		require.NotNil(t, decoded)
		assert.Equal(t, manifest.Changes, decoded.Changes)
		assert.Equal(t, entities.ManifestVersion, decoded.Version)
		assert.Equal(t, "Add actors\n\nSome details", entities.StripManifest(message))
	})

	t.Run("should leave the message untouched for an empty manifest", func(t *testing.T) {
		// given
		manifest := entities.NewCommitManifest(nil, false)

		// when
		message, err := entities.AppendManifest("Just text", manifest)

		// then
		require.NoError(t, err)
		assert.Nil(t, manifest)
		assert.Equal(t, "Just text", message)
		assert.Nil(t, entities.DecodeManifest(message))
	})

	t.Run("should only consider the last block", func(t *testing.T) {
		// given
		first, _ := entities.AppendManifest("Quoted", entities.NewCommitManifest(
			[]entities.ObjectChange{change("old", entities.ChangeAdded)}, false))
		message, err := entities.AppendManifest(first, entities.NewCommitManifest(
			[]entities.ObjectChange{change("new", entities.ChangeDeleted)}, false))
		require.NoError(t, err)

		// when
		decoded := entities.DecodeManifest(message)

		// then
		require.NotNil(t, decoded)
		assert.Equal(t, []entities.ObjectChange{change("new", entities.ChangeDeleted)}, decoded.Changes)
		assert.True(t, entities.ContainsChange(message, "new"))
		assert.False(t, entities.ContainsChange(message, "old"))
	})

	t.Run("should ignore a block followed by other text", func(t *testing.T) {
		// given
		message, _ := entities.AppendManifest("Subject", entities.NewCommitManifest(
			[]entities.ObjectChange{change("e1", entities.ChangeAdded)}, false))
		message += "\nSigned-off-by: someone"

		// when
		decoded := entities.DecodeManifest(message)

		// then
		assert.Nil(t, decoded)
	})

	t.Run("should ignore a manifest with a newer major version", func(t *testing.T) {
		// given
		message := "Subject\n\n[model-changes]\nversion: v2.0.0\nchanges:\n  - id: e1\n    kind: added\n[/model-changes]\n"

		// when
		decoded := entities.DecodeManifest(message)

		// then
		assert.Nil(t, decoded)
	})

	t.Run("should skip entries with unknown kinds", func(t *testing.T) {
		// given
		message := strings.Join([]string{
			"Subject", "",
			"[model-changes]",
			"version: v1.2.0",
			"changes:",
			"  - id: e1",
			"    kind: renamed",
			"  - id: e2",
			"    kind: moved",
			"[/model-changes]",
		}, "\n")

		// when
		decoded := entities.DecodeManifest(message)

		// then
		require.NotNil(t, decoded)
		assert.Equal(t, []entities.ObjectChange{change("e2", entities.ChangeMoved)}, decoded.Changes)
	})

	t.Run("should return nil for malformed yaml", func(t *testing.T) {
		// given
		message := "Subject\n\n[model-changes]\nversion: [\n[/model-changes]\n"

		// when
		decoded := entities.DecodeManifest(message)

		// then
		assert.Nil(t, decoded)
		assert.Equal(t, "Subject", entities.StripManifest(message))
	})
}

func TestCommitManifestQueries(t *testing.T) {
	t.Parallel()

	t.Run("should list kinds per object and distinct ids in order", func(t *testing.T) {
		// given
		manifest := entities.NewCommitManifest([]entities.ObjectChange{
			change("b", entities.ChangeMoved),
			change("a", entities.ChangeAdded),
			change("b", entities.ChangeModified),
		}, true)

		// when
		kinds := manifest.ChangesFor("b")
		ids := manifest.IDs()

		// then
		assert.True(t, manifest.Amended)
		assert.ElementsMatch(t, []entities.ChangeKind{entities.ChangeModified, entities.ChangeMoved}, kinds)
		assert.Equal(t, []string{"b", "a"}, ids)
	})
}
