// Package comparison matches the objects of two model snapshots by identity
// and classifies their differences.
package comparison

import (
	"fmt"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// DiffKind classifies a difference.
type DiffKind int

const (
	DiffDelete DiffKind = iota
	DiffAdd
	DiffChange
	DiffMove
)

func (k DiffKind) String() string {
	switch k {
	case DiffDelete:
		return "delete"
	case DiffAdd:
		return "add"
	case DiffChange:
		return "change"
	case DiffMove:
		return "move"
	default:
		return "unknown"
	}
}

// Side tells which side of a three-way comparison a diff comes from.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Diff is one difference between the left and the right snapshot.
type Diff struct {
	Kind     DiffKind
	Side     Side
	ObjectID string
	// ObjectKind is the structural kind of the changed object.
	ObjectKind entities.ObjectKind

	// ParentID is the container on the side holding the object: the new
	// parent for add and move, the old parent for delete.
	ParentID string
	// OldParentID is the previous container of a moved object.
	OldParentID string
	// Index is the position of an added or moved object in its new parent.
	Index int

	Feature  string
	OldValue string
	NewValue string
	// Unset means the feature no longer exists on the right.
	Unset bool

	Conflict *Conflict
}

// IsConflicting reports whether the diff takes part in a real conflict.
func (d *Diff) IsConflicting() bool { return d.Conflict != nil }

func (d *Diff) String() string {
	switch d.Kind {
	case DiffChange:
		return fmt.Sprintf("%s %s.%s", d.Kind, d.ObjectID, d.Feature)
	case DiffMove:
		return fmt.Sprintf("%s %s %s->%s", d.Kind, d.ObjectID, d.OldParentID, d.ParentID)
	default:
		return fmt.Sprintf("%s %s in %s", d.Kind, d.ObjectID, d.ParentID)
	}
}

// ConflictKind classifies a real conflict.
type ConflictKind string

const (
	ConflictChangeChange ConflictKind = "change-change"
	ConflictMoveMove     ConflictKind = "move-move"
	ConflictDeleteChange ConflictKind = "delete-change"
	ConflictAddAdd       ConflictKind = "add-add"

	// ConflictDeleteReference pairs a deletion with a new reference to the deleted object.
	ConflictDeleteReference ConflictKind = "delete-reference"
)

// Conflict pairs two diffs from opposite sides that cannot both be applied.
type Conflict struct {
	Kind  ConflictKind
	Left  *Diff
	Right *Diff
}

func (c *Conflict) String() string {
	return fmt.Sprintf("%s conflict on %s", c.Kind, c.Left.ObjectID)
}
