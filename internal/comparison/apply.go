package comparison

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// ApplyResult counts what Apply did.
type ApplyResult struct {
	Applied int
	Skipped int
}

// Apply copies the non-conflicting diffs of one side onto target. Additions
// go first so moves and changes can reach new containers, deletions last.
// Diffs whose container no longer exists in target are skipped.
func (t *ThreeWayComparison) Apply(target *entities.Model, side Side) (ApplyResult, error) {
	var result ApplyResult
	if target == nil || target.Root == nil {
		return result, fmt.Errorf("cannot apply onto an empty model")
	}

	diffs, source := t.right, t.theirsModel
	if side == SideLeft {
		diffs, source = t.left, t.oursModel
	}
	sourceIndex := entities.NewModelIndex(source)

	for _, kind := range []DiffKind{DiffAdd, DiffMove, DiffChange, DiffDelete} {
		for _, d := range diffs {
			if d.Kind != kind || d.IsConflicting() {
				continue
			}
			ok, err := applyDiff(target, sourceIndex, d)
			if err != nil {
				return result, fmt.Errorf("failed to apply %s: %w", d, err)
			}
			if ok {
				result.Applied++
			} else {
				logger.Debugf("[merge] Skipped %s", d)
				result.Skipped++
			}
		}
	}
	return result, nil
}

// ApplyRight applies their non-conflicting diffs onto target.
func (t *ThreeWayComparison) ApplyRight(target *entities.Model) (ApplyResult, error) {
	return t.Apply(target, SideRight)
}

func applyDiff(target *entities.Model, source *entities.ModelIndex, d *Diff) (bool, error) {
	switch d.Kind {
	case DiffAdd:
		if target.FindByID(d.ObjectID) != nil {
			return false, nil
		}
		obj := source.Object(d.ObjectID)
		parent := target.FindByID(d.ParentID)
		if obj == nil || parent == nil {
			return false, nil
		}
		insertAfterSibling(parent, obj.ShallowCopy(), source)
		return true, nil

	case DiffMove:
		obj, oldParent := findWithParent(target, d.ObjectID)
		newParent := target.FindByID(d.ParentID)
		if obj == nil || oldParent == nil || newParent == nil || newParent == obj {
			return false, nil
		}
		if oldParent.ID == newParent.ID || contains(obj, newParent.ID) {
			return false, nil
		}
		oldParent.RemoveChild(obj.ID)
		insertAfterSibling(newParent, obj, source)
		return true, nil

	case DiffChange:
		if d.Feature == entities.FeatureLabel {
			return false, nil
		}
		obj := target.FindByID(d.ObjectID)
		if obj == nil {
			return false, nil
		}
		return true, entities.SetFeature(obj, d.Feature, d.NewValue, d.Unset)

	case DiffDelete:
		obj, parent := findWithParent(target, d.ObjectID)
		if obj == nil || parent == nil {
			return false, nil
		}
		parent.RemoveChild(obj.ID)
		return true, nil
	}
	return false, nil
}

// insertAfterSibling places obj in parent right after the nearest preceding
// sibling it has in the source, or first when it has none there.
func insertAfterSibling(parent, obj *entities.ModelObject, source *entities.ModelIndex) {
	sourceParent := source.Object(parent.ID)
	if sourceParent == nil {
		parent.InsertChild(-1, obj)
		return
	}
	pos := sourceParent.ChildIndex(obj.ID)
	for i := pos - 1; i >= 0; i-- {
		if at := parent.ChildIndex(sourceParent.Children[i].ID); at >= 0 {
			parent.InsertChild(at+1, obj)
			return
		}
	}
	parent.InsertChild(0, obj)
}

func findWithParent(model *entities.Model, id string) (*entities.ModelObject, *entities.ModelObject) {
	var obj, parent *entities.ModelObject
	model.Root.Walk(func(o, p *entities.ModelObject) bool {
		if obj != nil {
			return false
		}
		if o.ID == id {
			obj, parent = o, p
			return false
		}
		return true
	})
	return obj, parent
}

func contains(root *entities.ModelObject, id string) bool {
	found := false
	root.Walk(func(o, _ *entities.ModelObject) bool {
		if o.ID == id {
			found = true
		}
		return !found
	})
	return found
}
