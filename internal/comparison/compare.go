package comparison

import (
	"sort"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// Comparison is the matched difference set between a left and a right model.
// It keeps the loaded models in memory only, never the files they came from.
type Comparison struct {
	left       *entities.Model
	right      *entities.Model
	leftIndex  *entities.ModelIndex
	rightIndex *entities.ModelIndex
	diffs      []*Diff
}

// Change groups every diff whose addressable owner is the same object.
type Change struct {
	Object *entities.ModelObject
	Diffs  []*Diff
}

// Compare matches the objects of both models by id. Either model may be nil,
// which stands for an empty document.
func Compare(left, right *entities.Model) *Comparison {
	c := &Comparison{
		left:       left,
		right:      right,
		leftIndex:  entities.NewModelIndex(left),
		rightIndex: entities.NewModelIndex(right),
	}
	c.diffs = diffIndexes(c.leftIndex, c.rightIndex, SideRight)
	logger.Debugf("[compare] %d differences between snapshots", len(c.diffs))
	return c
}

// Diffs returns every difference: additions, moves and changes in right
// traversal order followed by deletions in left traversal order.
func (c *Comparison) Diffs() []*Diff { return c.diffs }

// IsEmpty reports whether both models are structurally identical.
func (c *Comparison) IsEmpty() bool { return len(c.diffs) == 0 }

// Left returns the left model.
func (c *Comparison) Left() *entities.Model { return c.left }

// Right returns the right model.
func (c *Comparison) Right() *entities.Model { return c.right }

// FindLeft looks an object up in the left snapshot.
func (c *Comparison) FindLeft(id string) *entities.ModelObject { return c.leftIndex.Object(id) }

// FindRight looks an object up in the right snapshot.
func (c *Comparison) FindRight(id string) *entities.ModelObject { return c.rightIndex.Object(id) }

// ChangedObjects groups the diffs by nearest addressable owner. Diagram parts
// roll up to their view, except label changes caused by renaming the
// referenced concept, which belong to the concept alone. Changes are sorted
// document, folders, elements, relationships, views; the diffs of a change
// are sorted deletions, insertions, content changes, moves.
func (c *Comparison) ChangedObjects() []*Change {
	byOwner := map[string]*Change{}
	var changes []*Change
	for _, d := range c.diffs {
		if d.Kind == DiffChange && d.Feature == entities.FeatureLabel &&
			d.ObjectKind.OwnerPolicy() == entities.OwningView {
			continue
		}
		owner := c.ownerOf(d)
		if owner == nil {
			logger.Debugf("[compare] No addressable owner for %s", d)
			continue
		}
		change, ok := byOwner[owner.ID]
		if !ok {
			change = &Change{Object: owner}
			byOwner[owner.ID] = change
			changes = append(changes, change)
		}
		change.Diffs = append(change.Diffs, d)
	}

	for _, change := range changes {
		sort.SliceStable(change.Diffs, func(i, j int) bool {
			return change.Diffs[i].Kind < change.Diffs[j].Kind
		})
	}
	sort.SliceStable(changes, func(i, j int) bool {
		a, b := changes[i].Object, changes[j].Object
		if a.Kind.Rank() != b.Kind.Rank() {
			return a.Kind.Rank() < b.Kind.Rank()
		}
		if a.Label() != b.Label() {
			return a.Label() < b.Label()
		}
		return a.ID < b.ID
	})
	return changes
}

// ObjectChanges converts the grouped differences into manifest entries.
func (c *Comparison) ObjectChanges() []entities.ObjectChange {
	var out []entities.ObjectChange
	for _, change := range c.ChangedObjects() {
		out = append(out, change.ObjectChanges()...)
	}
	return out
}

// ObjectChanges maps each diff of the change onto a manifest entry for the
// owner: diffs on the owner itself keep their kind, diffs on its parts
// become modifications.
func (ch *Change) ObjectChanges() []entities.ObjectChange {
	var out []entities.ObjectChange
	for _, d := range ch.Diffs {
		kind := entities.ChangeModified
		if d.ObjectID == ch.Object.ID {
			switch d.Kind {
			case DiffAdd:
				kind = entities.ChangeAdded
			case DiffDelete:
				kind = entities.ChangeDeleted
			case DiffMove:
				kind = entities.ChangeMoved
			case DiffChange:
				kind = entities.ChangeModified
			}
		}
		out = append(out, entities.ObjectChange{ObjectID: ch.Object.ID, Kind: kind})
	}
	return out
}

func (c *Comparison) ownerOf(d *Diff) *entities.ModelObject {
	if d.Kind == DiffDelete {
		return c.leftIndex.AddressableOwner(d.ObjectID)
	}
	if owner := c.rightIndex.AddressableOwner(d.ObjectID); owner != nil {
		return owner
	}
	return c.leftIndex.AddressableOwner(d.ObjectID)
}

// diffIndexes computes the diffs turning from into to.
func diffIndexes(from, to *entities.ModelIndex, side Side) []*Diff {
	var diffs []*Diff
	for _, entry := range to.Entries() {
		obj := entry.Object
		if to.Object(obj.ID) != obj {
			continue
		}
		parentID := ""
		index := 0
		if entry.Parent != nil {
			parentID = entry.Parent.ID
			index = entry.Parent.ChildIndex(obj.ID)
		}

		old, found := from.Get(obj.ID)
		if !found {
			diffs = append(diffs, &Diff{
				Kind: DiffAdd, Side: side, ObjectID: obj.ID, ObjectKind: obj.Kind,
				ParentID: parentID, Index: index,
			})
			continue
		}

		if oldParentID := from.ParentID(obj.ID); oldParentID != parentID {
			diffs = append(diffs, &Diff{
				Kind: DiffMove, Side: side, ObjectID: obj.ID, ObjectKind: obj.Kind,
				ParentID: parentID, OldParentID: oldParentID, Index: index,
			})
		}

		oldFeatures := from.Features(old.Object)
		newFeatures := to.Features(obj)
		for _, name := range entities.SortedFeatureNames(oldFeatures, newFeatures) {
			oldValue, oldSet := oldFeatures[name]
			newValue, newSet := newFeatures[name]
			if oldSet == newSet && oldValue == newValue {
				continue
			}
			diffs = append(diffs, &Diff{
				Kind: DiffChange, Side: side, ObjectID: obj.ID, ObjectKind: obj.Kind,
				ParentID: parentID, Feature: name, OldValue: oldValue, NewValue: newValue, Unset: !newSet,
			})
		}
	}

	for _, entry := range from.Entries() {
		obj := entry.Object
		if from.Object(obj.ID) != obj {
			continue
		}
		if _, found := to.Get(obj.ID); found {
			continue
		}
		parentID := ""
		if entry.Parent != nil {
			parentID = entry.Parent.ID
		}
		diffs = append(diffs, &Diff{
			Kind: DiffDelete, Side: side, ObjectID: obj.ID, ObjectKind: obj.Kind, ParentID: parentID,
		})
	}
	return diffs
}
