package entities

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ObjectKind is the structural kind of a model object. Each kind declares
// its own capabilities instead of callers inspecting concrete types.
type ObjectKind string

const (
	KindModel         ObjectKind = "model"
	KindFolder        ObjectKind = "folder"
	KindElement       ObjectKind = "element"
	KindRelationship  ObjectKind = "relationship"
	KindView          ObjectKind = "view"
	KindDiagramObject ObjectKind = "diagram-object"
	KindConnection    ObjectKind = "connection"
)

// OwnerPolicy tells how a kind resolves its addressable owner.
type OwnerPolicy int

const (
	// OwnSelf means the object is addressable and owns its own changes.
	OwnSelf OwnerPolicy = iota
	// OwningView means changes roll up to the enclosing view.
	OwningView
)

type kindTraits struct {
	rank   int
	policy OwnerPolicy
}

//nolint:gochecknoglobals // immutable capability table
var traits = map[ObjectKind]kindTraits{
	KindModel:         {rank: 0, policy: OwnSelf},
	KindFolder:        {rank: 1, policy: OwnSelf},
	KindElement:       {rank: 2, policy: OwnSelf},
	KindRelationship:  {rank: 3, policy: OwnSelf},
	KindView:          {rank: 4, policy: OwnSelf},
	KindDiagramObject: {rank: 5, policy: OwningView},
	KindConnection:    {rank: 5, policy: OwningView},
}

// Addressable reports whether objects of this kind are tracked directly by
// manifests and the comparator.
func (k ObjectKind) Addressable() bool {
	t, ok := traits[k]
	return ok && t.policy == OwnSelf
}

// Rank orders kinds: document, folders, elements, relationships, views.
func (k ObjectKind) Rank() int {
	if t, ok := traits[k]; ok {
		return t.rank
	}
	return len(traits)
}

// OwnerPolicy returns the owner resolution declared by the kind.
func (k ObjectKind) OwnerPolicy() OwnerPolicy {
	return traits[k].policy
}

// IsConcept reports whether the kind is an element or a relationship.
func (k ObjectKind) IsConcept() bool {
	return k == KindElement || k == KindRelationship
}

// Valid reports whether the kind is known.
func (k ObjectKind) Valid() bool {
	_, ok := traits[k]
	return ok
}

// Property is a key/value record attached to an object. It is a value, not an object.
type Property struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Bounds are the coordinates of a diagram object inside its parent.
type Bounds struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (b Bounds) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", b.X, b.Y, b.Width, b.Height)
}

// ParseBounds reads the format produced by Bounds.String.
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 { //nolint:mnd // x,y,w,h
		return Bounds{}, fmt.Errorf("invalid bounds %q", s)
	}
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid bounds %q: %w", s, err)
		}
		values[i] = v
	}
	return Bounds{X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
}

// ModelObject is a node of the model tree.
type ModelObject struct {
	ID            string         `yaml:"id"`
	Kind          ObjectKind     `yaml:"kind"`
	Type          string         `yaml:"type,omitempty"`
	Name          string         `yaml:"name,omitempty"`
	Documentation string         `yaml:"documentation,omitempty"`
	Properties    []Property     `yaml:"properties,omitempty"`
	Source        string         `yaml:"source,omitempty"`
	Target        string         `yaml:"target,omitempty"`
	Concept       string         `yaml:"concept,omitempty"`
	Bounds        *Bounds        `yaml:"bounds,omitempty"`
	ImagePath     string         `yaml:"image,omitempty"`
	Children      []*ModelObject `yaml:"children,omitempty"`
}

// Model is the whole document. The root object has KindModel.
type Model struct {
	Root *ModelObject `yaml:"model"`

	// File is where the document was loaded from or will be saved to.
	File string `yaml:"-"`
	// Digest fingerprints the content as last loaded or saved.
	Digest string `yaml:"-"`
}

// NewObjectID returns a fresh identifier for a model object.
func NewObjectID() string {
	return "id-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewObject creates an object of the given kind with a fresh identifier.
func NewObject(kind ObjectKind, name string) *ModelObject {
	return &ModelObject{ID: NewObjectID(), Kind: kind, Name: name}
}

// Add appends children and returns the receiver for chaining.
func (o *ModelObject) Add(children ...*ModelObject) *ModelObject {
	o.Children = append(o.Children, children...)
	return o
}

// Property returns the value of the first property with the given key.
func (o *ModelObject) Property(key string) (string, bool) {
	for _, p := range o.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// SetProperty updates the first property with the key or appends a new one.
func (o *ModelObject) SetProperty(key, value string) {
	for i := range o.Properties {
		if o.Properties[i].Key == key {
			o.Properties[i].Value = value
			return
		}
	}
	o.Properties = append(o.Properties, Property{Key: key, Value: value})
}

// RemoveProperty drops every property with the key.
func (o *ModelObject) RemoveProperty(key string) {
	kept := o.Properties[:0]
	for _, p := range o.Properties {
		if p.Key != key {
			kept = append(kept, p)
		}
	}
	o.Properties = kept
}

// ShallowCopy copies the object's own values without its children.
func (o *ModelObject) ShallowCopy() *ModelObject {
	c := *o
	c.Children = nil
	if o.Properties != nil {
		c.Properties = append([]Property(nil), o.Properties...)
	}
	if o.Bounds != nil {
		b := *o.Bounds
		c.Bounds = &b
	}
	return &c
}

// DeepCopy copies the object and its whole subtree.
func (o *ModelObject) DeepCopy() *ModelObject {
	c := o.ShallowCopy()
	for _, child := range o.Children {
		c.Children = append(c.Children, child.DeepCopy())
	}
	return c
}

// Walk visits the subtree in pre-order. Returning false from visit skips
// the object's children.
func (o *ModelObject) Walk(visit func(obj, parent *ModelObject) bool) {
	o.walk(nil, visit)
}

func (o *ModelObject) walk(parent *ModelObject, visit func(obj, parent *ModelObject) bool) {
	if !visit(o, parent) {
		return
	}
	for _, child := range o.Children {
		child.walk(o, visit)
	}
}

// RemoveChild detaches the direct child with the given id and returns its former index.
func (o *ModelObject) RemoveChild(id string) int {
	for i, child := range o.Children {
		if child.ID == id {
			o.Children = append(o.Children[:i], o.Children[i+1:]...)
			return i
		}
	}
	return -1
}

// InsertChild inserts a child at index, appending when index is out of range.
func (o *ModelObject) InsertChild(index int, child *ModelObject) {
	if index < 0 || index >= len(o.Children) {
		o.Children = append(o.Children, child)
		return
	}
	o.Children = append(o.Children[:index], append([]*ModelObject{child}, o.Children[index:]...)...)
}

// ChildIndex returns the position of a direct child or -1.
func (o *ModelObject) ChildIndex(id string) int {
	for i, child := range o.Children {
		if child.ID == id {
			return i
		}
	}
	return -1
}

// Label is the human readable name of the object.
func (o *ModelObject) Label() string {
	if o.Name != "" {
		return o.Name
	}
	if o.Type != "" {
		return o.Type
	}
	return o.ID
}

// Objects returns every object of the model in pre-order.
func (m *Model) Objects() []*ModelObject {
	if m == nil || m.Root == nil {
		return nil
	}
	var out []*ModelObject
	m.Root.Walk(func(obj, _ *ModelObject) bool {
		out = append(out, obj)
		return true
	})
	return out
}

// AddressableObjects returns the addressable objects in traversal order.
// Diagram internals are not descended into.
func (m *Model) AddressableObjects() []*ModelObject {
	if m == nil || m.Root == nil {
		return nil
	}
	var out []*ModelObject
	m.Root.Walk(func(obj, _ *ModelObject) bool {
		if !obj.Kind.Addressable() {
			return false
		}
		out = append(out, obj)
		return obj.Kind != KindView
	})
	return out
}

// FindByID returns the object with the given id or nil.
func (m *Model) FindByID(id string) *ModelObject {
	var found *ModelObject
	if m == nil || m.Root == nil {
		return nil
	}
	m.Root.Walk(func(obj, _ *ModelObject) bool {
		if found != nil {
			return false
		}
		if obj.ID == id {
			found = obj
			return false
		}
		return true
	})
	return found
}

// ImagePaths returns every asset path referenced by the model, deduplicated.
func (m *Model) ImagePaths() []string {
	seen := map[string]bool{}
	var out []string
	for _, obj := range m.Objects() {
		if obj.ImagePath != "" && !seen[obj.ImagePath] {
			seen[obj.ImagePath] = true
			out = append(out, obj.ImagePath)
		}
	}
	return out
}

// DeepCopy copies the whole document.
func (m *Model) DeepCopy() *Model {
	if m == nil {
		return nil
	}
	c := &Model{File: m.File, Digest: m.Digest}
	if m.Root != nil {
		c.Root = m.Root.DeepCopy()
	}
	return c
}

// StandardFolders is the top level layout created for new models.
//
//nolint:gochecknoglobals // immutable layout
var StandardFolders = []struct {
	Type string
	Name string
}{
	{"strategy", "Strategy"},
	{"business", "Business"},
	{"application", "Application"},
	{"technology", "Technology & Physical"},
	{"motivation", "Motivation"},
	{"implementation_migration", "Implementation & Migration"},
	{"other", "Other"},
	{"relations", "Relations"},
	{"diagrams", "Views"},
}

// NewModel creates an empty model with the standard folder layout.
func NewModel(name string) *Model {
	root := NewObject(KindModel, name)
	for _, f := range StandardFolders {
		folder := NewObject(KindFolder, f.Name)
		folder.Type = f.Type
		root.Add(folder)
	}
	return &Model{Root: root}
}

// TopFolder returns the top level folder of the given type.
func (m *Model) TopFolder(folderType string) *ModelObject {
	if m == nil || m.Root == nil {
		return nil
	}
	for _, child := range m.Root.Children {
		if child.Kind == KindFolder && child.Type == folderType {
			return child
		}
	}
	return nil
}
