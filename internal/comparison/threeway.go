package comparison

import (
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// ThreeWayComparison compares two descendants of a common ancestor: the left
// side holds base→ours, the right side base→theirs.
type ThreeWayComparison struct {
	base   *entities.ModelIndex
	ours   *entities.ModelIndex
	theirs *entities.ModelIndex

	theirsModel *entities.Model
	oursModel   *entities.Model

	left      []*Diff
	right     []*Diff
	conflicts []*Conflict
}

// CompareThreeWay computes both sides and flags the real conflicts between them.
func CompareThreeWay(base, ours, theirs *entities.Model) *ThreeWayComparison {
	t := &ThreeWayComparison{
		base:        entities.NewModelIndex(base),
		ours:        entities.NewModelIndex(ours),
		theirs:      entities.NewModelIndex(theirs),
		oursModel:   ours,
		theirsModel: theirs,
	}
	t.left = diffIndexes(t.base, t.ours, SideLeft)
	t.right = diffIndexes(t.base, t.theirs, SideRight)
	t.detectConflicts()
	logger.Debugf("[compare] three-way: %d ours, %d theirs, %d conflicts",
		len(t.left), len(t.right), len(t.conflicts))
	return t
}

// LeftDiffs returns the base→ours diffs.
func (t *ThreeWayComparison) LeftDiffs() []*Diff { return t.left }

// RightDiffs returns the base→theirs diffs.
func (t *ThreeWayComparison) RightDiffs() []*Diff { return t.right }

// Conflicts returns the real conflicts.
func (t *ThreeWayComparison) Conflicts() []*Conflict { return t.conflicts }

// HasConflicts reports whether at least one real conflict exists.
func (t *ThreeWayComparison) HasConflicts() bool { return len(t.conflicts) > 0 }

// Ours returns our snapshot.
func (t *ThreeWayComparison) Ours() *entities.Model { return t.oursModel }

// Theirs returns their snapshot.
func (t *ThreeWayComparison) Theirs() *entities.Model { return t.theirsModel }

// FindBase looks an object up in the common ancestor.
func (t *ThreeWayComparison) FindBase(id string) *entities.ModelObject { return t.base.Object(id) }

// FindOurs looks an object up in our snapshot.
func (t *ThreeWayComparison) FindOurs(id string) *entities.ModelObject { return t.ours.Object(id) }

// FindTheirs looks an object up in their snapshot.
func (t *ThreeWayComparison) FindTheirs(id string) *entities.ModelObject { return t.theirs.Object(id) }

func (t *ThreeWayComparison) detectConflicts() {
	leftByID := groupByObject(t.left)
	for _, r := range t.right {
		for _, l := range leftByID[r.ObjectID] {
			if kind, ok := conflictBetween(l, r); ok {
				t.addConflict(kind, l, r)
			}
		}
	}

	// A deletion conflicts with any work done inside the deleted subtree on the other side.
	for _, l := range t.left {
		if l.Kind != DiffDelete {
			continue
		}
		for _, r := range t.right {
			if r.Kind != DiffDelete && r.ObjectID != l.ObjectID && t.theirs.IsAncestor(l.ObjectID, r.ObjectID) {
				t.addConflict(ConflictDeleteChange, l, r)
			}
		}
	}
	for _, r := range t.right {
		if r.Kind != DiffDelete {
			continue
		}
		for _, l := range t.left {
			if l.Kind != DiffDelete && l.ObjectID != r.ObjectID && t.ours.IsAncestor(r.ObjectID, l.ObjectID) {
				t.addConflict(ConflictDeleteChange, l, r)
			}
		}
	}

	// A deletion also conflicts with a new reference to the deleted object.
	for _, l := range t.left {
		if l.Kind != DiffDelete {
			continue
		}
		for _, r := range t.right {
			if referencesObject(t.theirs, r, l.ObjectID) {
				t.addConflict(ConflictDeleteReference, l, r)
			}
		}
	}
	for _, r := range t.right {
		if r.Kind != DiffDelete {
			continue
		}
		for _, l := range t.left {
			if referencesObject(t.ours, l, r.ObjectID) {
				t.addConflict(ConflictDeleteReference, l, r)
			}
		}
	}
}

// referencesObject reports whether d adds a relationship end or diagram
// concept pointing at id.
func referencesObject(index *entities.ModelIndex, d *Diff, id string) bool {
	switch d.Kind {
	case DiffAdd:
		obj := index.Object(d.ObjectID)
		return obj != nil && (obj.Source == id || obj.Target == id || obj.Concept == id)
	case DiffChange:
		switch d.Feature {
		case entities.FeatureSource, entities.FeatureTarget, entities.FeatureConcept:
			return !d.Unset && d.NewValue == id
		}
	}
	return false
}

func conflictBetween(l, r *Diff) (ConflictKind, bool) {
	switch {
	case l.Kind == DiffChange && r.Kind == DiffChange:
		if l.Feature != r.Feature || l.Feature == entities.FeatureLabel {
			return "", false
		}
		if l.NewValue == r.NewValue && l.Unset == r.Unset {
			return "", false
		}
		return ConflictChangeChange, true
	case l.Kind == DiffMove && r.Kind == DiffMove:
		return ConflictMoveMove, l.ParentID != r.ParentID
	case l.Kind == DiffAdd && r.Kind == DiffAdd:
		return ConflictAddAdd, l.ParentID != r.ParentID
	case l.Kind == DiffDelete && r.Kind != DiffDelete:
		return ConflictDeleteChange, true
	case r.Kind == DiffDelete && l.Kind != DiffDelete:
		return ConflictDeleteChange, true
	default:
		return "", false
	}
}

func (t *ThreeWayComparison) addConflict(kind ConflictKind, l, r *Diff) {
	c := &Conflict{Kind: kind, Left: l, Right: r}
	if l.Conflict == nil {
		l.Conflict = c
	}
	if r.Conflict == nil {
		r.Conflict = c
	}
	t.conflicts = append(t.conflicts, c)
}

func groupByObject(diffs []*Diff) map[string][]*Diff {
	out := map[string][]*Diff{}
	for _, d := range diffs {
		out[d.ObjectID] = append(out[d.ObjectID], d)
	}
	return out
}
