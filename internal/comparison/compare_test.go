//go:build unit

package comparison_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/modelgit/internal/comparison"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/test/domain/entitybuilders"
)

func baseBuilder() *entitybuilders.ModelBuilder {
	return entitybuilders.NewModelBuilder().
		WithElement("actor", "BusinessActor", "Customer").
		WithElement("role", "BusinessRole", "Buyer").
		WithRelationship("assign", "Assignment", "actor", "role").
		WithView("view", "Overview").
		WithDiagramObject("view", "dobj-actor", "actor", entities.Bounds{X: 10, Y: 10, Width: 120, Height: 55})
}

func kindsByID(changes []entities.ObjectChange) map[string][]entities.ChangeKind {
	out := map[string][]entities.ChangeKind{}
	for _, c := range changes {
		out[c.ObjectID] = append(out[c.ObjectID], c.Kind)
	}
	return out
}

func TestCompare(t *testing.T) {
	t.Parallel()

	t.Run("should find no differences between identical models", func(t *testing.T) {
		t.Parallel()

		// given
		left := baseBuilder().BuildModel()
		right := baseBuilder().BuildModel()

		// when
		cmp := comparison.Compare(left, right)

		// then
		assert.True(t, cmp.IsEmpty())
		assert.Empty(t, cmp.ObjectChanges())
	})

	t.Run("should report every addressable object as added against an empty model", func(t *testing.T) {
		t.Parallel()

		// given
		right := baseBuilder().BuildModel()

		// when
		changes := comparison.Compare(nil, right).ObjectChanges()

		// then
		byID := kindsByID(changes)
		for _, obj := range right.AddressableObjects() {
			assert.Contains(t, byID[obj.ID], entities.ChangeAdded, obj.ID)
		}
		assert.NotContains(t, byID, "dobj-actor")
	})

	t.Run("should classify a rename as a modification of the element", func(t *testing.T) {
		t.Parallel()

		// given
		left := baseBuilder().BuildModel()
		right := baseBuilder().BuildModel()
		right.FindByID("actor").Name = "Client"

		// when
		cmp := comparison.Compare(left, right)

		// then
		assert.Equal(t, map[string][]entities.ChangeKind{
			"actor": {entities.ChangeModified},
		}, kindsByID(cmp.ObjectChanges()))
	})

	t.Run("should roll diagram part changes up to the view", func(t *testing.T) {
		t.Parallel()

		// given
		left := baseBuilder().BuildModel()
		right := baseBuilder().BuildModel()
		right.FindByID("dobj-actor").Bounds = &entities.Bounds{X: 40, Y: 10, Width: 120, Height: 55}

		// when
		changes := comparison.Compare(left, right).ChangedObjects()

		// then
		require.Len(t, changes, 1)
		assert.Equal(t, "view", changes[0].Object.ID)
		assert.Equal(t, comparison.DiffChange, changes[0].Diffs[0].Kind)
		assert.Equal(t, entities.FeatureBounds, changes[0].Diffs[0].Feature)
	})

	t.Run("should report moves and deletions", func(t *testing.T) {
		t.Parallel()

		// given
		left := baseBuilder().WithFolder(entitybuilders.FolderID("business"), "sub", "Sub").BuildModel()
		right := baseBuilder().WithFolder(entitybuilders.FolderID("business"), "sub", "Sub").BuildModel()
		actor := right.FindByID("actor")
		right.FindByID(entitybuilders.FolderID("business")).RemoveChild("actor")
		right.FindByID("sub").Add(actor)
		right.FindByID(entitybuilders.FolderID("business")).RemoveChild("role")

		// when
		byID := kindsByID(comparison.Compare(left, right).ObjectChanges())

		// then
		assert.Equal(t, []entities.ChangeKind{entities.ChangeMoved}, byID["actor"])
		assert.Equal(t, []entities.ChangeKind{entities.ChangeDeleted}, byID["role"])
	})

	t.Run("should sort changes by kind rank", func(t *testing.T) {
		t.Parallel()

		// given
		left := baseBuilder().BuildModel()
		right := baseBuilder().BuildModel()
		right.FindByID("view").Name = "Renamed view"
		right.FindByID("assign").Documentation = "why"
		right.FindByID("role").Name = "Shopper"

		// when
		changes := comparison.Compare(left, right).ChangedObjects()

		// then
		require.Len(t, changes, 3)
		assert.Equal(t, "role", changes[0].Object.ID)
		assert.Equal(t, "assign", changes[1].Object.ID)
		assert.Equal(t, "view", changes[2].Object.ID)
	})
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	t.Run("should render single line and multi line value changes", func(t *testing.T) {
		t.Parallel()

		// given
		left := baseBuilder().BuildModel()
		left.FindByID("actor").Documentation = "first\nsecond\n"
		right := baseBuilder().BuildModel()
		right.FindByID("actor").Documentation = "first\nchanged\n"
		right.FindByID("role").Name = "Shopper"

		// when
		text, err := comparison.Compare(left, right).Describe()

		// then
		require.NoError(t, err)
		assert.Contains(t, text, `element "Customer" (actor)`)
		assert.Contains(t, text, `~ Shopper.name: "Buyer" -> "Shopper"`)
		assert.Contains(t, text, "-second")
		assert.Contains(t, text, "+changed")
	})
}

func TestRenderValueDiff(t *testing.T) {
	t.Parallel()

	t.Run("should produce a unified diff with file headers", func(t *testing.T) {
		t.Parallel()

		// when
		text, err := comparison.RenderValueDiff("documentation", "a\nb\n", "a\nc\n")

		// then
		require.NoError(t, err)
		assert.Contains(t, text, "--- a/documentation")
		assert.Contains(t, text, "+++ b/documentation")
		assert.Contains(t, text, "-b\n")
		assert.Contains(t, text, "+c\n")
	})
}
