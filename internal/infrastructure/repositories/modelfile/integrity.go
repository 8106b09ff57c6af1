package modelfile

import (
	"fmt"
	"strings"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// CheckIntegrity validates the structure of a model: unique ids, known kinds,
// a model root and resolvable references. Every problem is reported at once.
func (it *ModelFileRepository) CheckIntegrity(model *entities.Model) error {
	if model == nil || model.Root == nil {
		return fmt.Errorf("%w: model is empty", entities.ErrIntegrity)
	}

	var problems []string
	if model.Root.Kind != entities.KindModel {
		problems = append(problems, fmt.Sprintf("root %s has kind %q", model.Root.ID, model.Root.Kind))
	}

	index := entities.NewModelIndex(model)
	seen := map[string]bool{}
	model.Root.Walk(func(obj, parent *entities.ModelObject) bool {
		switch {
		case obj.ID == "":
			problems = append(problems, fmt.Sprintf("object %q under %s has no id", obj.Label(), idOf(parent)))
		case seen[obj.ID]:
			problems = append(problems, fmt.Sprintf("duplicate id %s", obj.ID))
		}
		seen[obj.ID] = true
		if !obj.Kind.Valid() {
			problems = append(problems, fmt.Sprintf("object %s has unknown kind %q", obj.ID, obj.Kind))
		}
		if parent != nil && obj.Kind == entities.KindModel {
			problems = append(problems, fmt.Sprintf("nested model root %s", obj.ID))
		}
		problems = append(problems, checkReferences(index, obj)...)
		return true
	})

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", entities.ErrIntegrity, strings.Join(problems, "; "))
	}
	return nil
}

func checkReferences(index *entities.ModelIndex, obj *entities.ModelObject) []string {
	var problems []string
	expect := func(feature, id string, accept func(entities.ObjectKind) bool) {
		if id == "" {
			problems = append(problems, fmt.Sprintf("%s %s has no %s", obj.Kind, obj.ID, feature))
			return
		}
		target := index.Object(id)
		if target == nil {
			problems = append(problems, fmt.Sprintf("%s %s references missing %s %s", obj.Kind, obj.ID, feature, id))
			return
		}
		if !accept(target.Kind) {
			problems = append(problems,
				fmt.Sprintf("%s %s has %s %s of kind %q", obj.Kind, obj.ID, feature, id, target.Kind))
		}
	}

	switch obj.Kind {
	case entities.KindRelationship:
		expect(entities.FeatureSource, obj.Source, entities.ObjectKind.IsConcept)
		expect(entities.FeatureTarget, obj.Target, entities.ObjectKind.IsConcept)
	case entities.KindConnection:
		isPart := func(k entities.ObjectKind) bool {
			return k == entities.KindDiagramObject || k == entities.KindConnection
		}
		expect(entities.FeatureSource, obj.Source, isPart)
		expect(entities.FeatureTarget, obj.Target, isPart)
		if obj.Concept != "" {
			expect(entities.FeatureConcept, obj.Concept, isRelationship)
		}
	case entities.KindDiagramObject:
		if obj.Concept != "" {
			expect(entities.FeatureConcept, obj.Concept, isElement)
		}
	}
	return problems
}

func isElement(k entities.ObjectKind) bool { return k == entities.KindElement }

func isRelationship(k entities.ObjectKind) bool { return k == entities.KindRelationship }

func idOf(obj *entities.ModelObject) string {
	if obj == nil {
		return "<root>"
	}
	return obj.ID
}
