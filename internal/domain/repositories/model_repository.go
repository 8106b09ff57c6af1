package repositories

import "github.com/rios0rios0/modelgit/internal/domain/entities"

// ModelRepository is the document subsystem: it reads and writes model files.
type ModelRepository interface {
	Load(path string) (*entities.Model, error)
	Save(model *entities.Model) error
	IsDirty(model *entities.Model) bool
	// CheckIntegrity returns nil for a consistent model, or an error wrapping
	// entities.ErrIntegrity that lists every problem found.
	CheckIntegrity(model *entities.Model) error
	Assets(model *entities.Model) AssetStore
}

// AssetStore holds the binary resources of one model.
type AssetStore interface {
	// GetBytes returns the asset content, found is false when the asset is absent.
	GetBytes(path string) (data []byte, found bool, err error)
	PutBytes(path string, data []byte) error
}
