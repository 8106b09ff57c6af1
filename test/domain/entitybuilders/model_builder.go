//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// ModelBuilder helps create test models with a fluent interface. Every
// object gets the id it is given so that snapshots built separately match.
type ModelBuilder struct {
	*testkit.BaseBuilder
	name    string
	objects []placedObject
}

type placedObject struct {
	parentID string
	object   *entities.ModelObject
}

// NewModelBuilder creates a builder for a model with the standard folders,
// whose ids are "folder-<type>".
func NewModelBuilder() *ModelBuilder {
	return &ModelBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "Test Model",
	}
}

// FolderID returns the id the builder gives a standard folder.
func FolderID(folderType string) string {
	return "folder-" + folderType
}

// WithName sets the model name.
func (b *ModelBuilder) WithName(name string) *ModelBuilder {
	b.name = name
	return b
}

// WithElement adds an element to the business folder.
func (b *ModelBuilder) WithElement(id, elementType, name string) *ModelBuilder {
	return b.WithObject(FolderID("business"), &entities.ModelObject{
		ID: id, Kind: entities.KindElement, Type: elementType, Name: name,
	})
}

// WithElementIn adds an element to the given parent.
func (b *ModelBuilder) WithElementIn(parentID, id, elementType, name string) *ModelBuilder {
	return b.WithObject(parentID, &entities.ModelObject{
		ID: id, Kind: entities.KindElement, Type: elementType, Name: name,
	})
}

// WithFolder adds a user folder to the given parent.
func (b *ModelBuilder) WithFolder(parentID, id, name string) *ModelBuilder {
	return b.WithObject(parentID, &entities.ModelObject{ID: id, Kind: entities.KindFolder, Name: name})
}

// WithRelationship adds a relationship to the relations folder.
func (b *ModelBuilder) WithRelationship(id, relType, source, target string) *ModelBuilder {
	return b.WithObject(FolderID("relations"), &entities.ModelObject{
		ID: id, Kind: entities.KindRelationship, Type: relType, Source: source, Target: target,
	})
}

// WithView adds a view to the views folder.
func (b *ModelBuilder) WithView(id, name string) *ModelBuilder {
	return b.WithObject(FolderID("diagrams"), &entities.ModelObject{ID: id, Kind: entities.KindView, Name: name})
}

// WithDiagramObject adds a diagram object referencing a concept to a view.
func (b *ModelBuilder) WithDiagramObject(viewID, id, concept string, bounds entities.Bounds) *ModelBuilder {
	return b.WithObject(viewID, &entities.ModelObject{
		ID: id, Kind: entities.KindDiagramObject, Concept: concept, Bounds: &bounds,
	})
}

// WithObject adds an arbitrary object below the parent with the given id.
func (b *ModelBuilder) WithObject(parentID string, obj *entities.ModelObject) *ModelBuilder {
	b.objects = append(b.objects, placedObject{parentID: parentID, object: obj})
	return b
}

// Build creates the model (satisfies testkit.Builder interface).
func (b *ModelBuilder) Build() interface{} {
	return b.BuildModel()
}

// BuildModel creates the model with a concrete return type. Objects are
// attached in the order they were added, so parents must come first.
func (b *ModelBuilder) BuildModel() *entities.Model {
	root := &entities.ModelObject{ID: "model", Kind: entities.KindModel, Name: b.name}
	for _, f := range entities.StandardFolders {
		root.Add(&entities.ModelObject{ID: FolderID(f.Type), Kind: entities.KindFolder, Type: f.Type, Name: f.Name})
	}
	model := &entities.Model{Root: root}
	for _, placed := range b.objects {
		parent := model.FindByID(placed.parentID)
		if parent == nil {
			parent = root
		}
		parent.Add(placed.object.DeepCopy())
	}
	return model
}

// Reset clears the builder state, allowing it to be reused.
func (b *ModelBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "Test Model"
	b.objects = nil
	return b
}

// Clone creates a deep copy of the ModelBuilder.
func (b *ModelBuilder) Clone() testkit.Builder {
	return &ModelBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		objects:     append([]placedObject(nil), b.objects...),
	}
}
