package entities

import (
	"sort"
	"strings"
)

const (
	FeatureType          = "type"
	FeatureName          = "name"
	FeatureDocumentation = "documentation"
	FeatureSource        = "source"
	FeatureTarget        = "target"
	FeatureConcept       = "concept"
	FeatureBounds        = "bounds"
	FeatureImage         = "image"
	// FeatureLabel is derived: the name a diagram part shows for its concept.
	FeatureLabel = "label"
	// FeaturePropertyPrefix prefixes property keys in feature maps.
	FeaturePropertyPrefix = "property:"
)

// IndexEntry locates one object inside a model.
type IndexEntry struct {
	Object *ModelObject
	Parent *ModelObject
	Order  int
	Depth  int
}

// ModelIndex gives constant time access to objects and their parents.
type ModelIndex struct {
	entries map[string]*IndexEntry
	ordered []*IndexEntry
}

// NewModelIndex indexes every object of the model. A nil model yields an empty index.
func NewModelIndex(model *Model) *ModelIndex {
	idx := &ModelIndex{entries: map[string]*IndexEntry{}}
	if model == nil || model.Root == nil {
		return idx
	}
	depths := map[*ModelObject]int{}
	model.Root.Walk(func(obj, parent *ModelObject) bool {
		depth := 0
		if parent != nil {
			depth = depths[parent] + 1
		}
		depths[obj] = depth
		entry := &IndexEntry{Object: obj, Parent: parent, Order: len(idx.ordered), Depth: depth}
		if _, dup := idx.entries[obj.ID]; !dup {
			idx.entries[obj.ID] = entry
		}
		idx.ordered = append(idx.ordered, entry)
		return true
	})
	return idx
}

// Get returns the entry for an id.
func (x *ModelIndex) Get(id string) (*IndexEntry, bool) {
	e, ok := x.entries[id]
	return e, ok
}

// Object returns the object with the id or nil.
func (x *ModelIndex) Object(id string) *ModelObject {
	if e, ok := x.entries[id]; ok {
		return e.Object
	}
	return nil
}

// ParentID returns the id of the object's parent, empty for the root.
func (x *ModelIndex) ParentID(id string) string {
	if e, ok := x.entries[id]; ok && e.Parent != nil {
		return e.Parent.ID
	}
	return ""
}

// Entries returns every entry in pre-order, duplicates included.
func (x *ModelIndex) Entries() []*IndexEntry { return x.ordered }

// Len returns the number of indexed objects.
func (x *ModelIndex) Len() int { return len(x.ordered) }

// IsAncestor reports whether ancestorID is a strict ancestor of id.
func (x *ModelIndex) IsAncestor(ancestorID, id string) bool {
	for cur := x.ParentID(id); cur != ""; cur = x.ParentID(cur) {
		if cur == ancestorID {
			return true
		}
	}
	return false
}

// AddressableOwner resolves the addressable object that owns the changes of
// the object with the given id, following each kind's declared owner policy.
func (x *ModelIndex) AddressableOwner(id string) *ModelObject {
	e, ok := x.entries[id]
	if !ok {
		return nil
	}
	switch e.Object.Kind.OwnerPolicy() {
	case OwningView:
		for cur := e.Parent; cur != nil; {
			if cur.Kind == KindView {
				return cur
			}
			pe, found := x.entries[cur.ID]
			if !found {
				return nil
			}
			cur = pe.Parent
		}
		return nil
	default:
		return e.Object
	}
}

// Features returns the comparable values of an object. Properties appear as
// "property:<key>" entries, coordinates as "bounds". Diagram parts that
// reference a concept carry the concept name as a derived "label".
func (x *ModelIndex) Features(obj *ModelObject) map[string]string {
	f := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			f[k] = v
		}
	}
	set(FeatureType, obj.Type)
	set(FeatureName, obj.Name)
	set(FeatureDocumentation, obj.Documentation)
	set(FeatureSource, obj.Source)
	set(FeatureTarget, obj.Target)
	set(FeatureConcept, obj.Concept)
	set(FeatureImage, obj.ImagePath)
	if obj.Bounds != nil {
		f[FeatureBounds] = obj.Bounds.String()
	}
	for _, p := range obj.Properties {
		if _, seen := f[FeaturePropertyPrefix+p.Key]; !seen {
			f[FeaturePropertyPrefix+p.Key] = p.Value
		}
	}
	if obj.Concept != "" {
		if concept := x.Object(obj.Concept); concept != nil {
			set(FeatureLabel, concept.Name)
		}
	}
	return f
}

// SetFeature writes a feature value back onto the object. Derived features are ignored.
func SetFeature(obj *ModelObject, feature, value string, unset bool) error {
	if key, ok := strings.CutPrefix(feature, FeaturePropertyPrefix); ok {
		if unset {
			obj.RemoveProperty(key)
		} else {
			obj.SetProperty(key, value)
		}
		return nil
	}
	if unset {
		value = ""
	}
	switch feature {
	case FeatureType:
		obj.Type = value
	case FeatureName:
		obj.Name = value
	case FeatureDocumentation:
		obj.Documentation = value
	case FeatureSource:
		obj.Source = value
	case FeatureTarget:
		obj.Target = value
	case FeatureConcept:
		obj.Concept = value
	case FeatureImage:
		obj.ImagePath = value
	case FeatureBounds:
		if value == "" {
			obj.Bounds = nil
			return nil
		}
		b, err := ParseBounds(value)
		if err != nil {
			return err
		}
		obj.Bounds = &b
	case FeatureLabel:
	default:
		return &UnknownFeatureError{Feature: feature}
	}
	return nil
}

// UnknownFeatureError reports a feature name no object kind carries.
type UnknownFeatureError struct {
	Feature string
}

func (e *UnknownFeatureError) Error() string { return "unknown feature " + e.Feature }

// SortedFeatureNames returns the union of feature names of two maps, sorted.
func SortedFeatureNames(a, b map[string]string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range []map[string]string{a, b} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}
