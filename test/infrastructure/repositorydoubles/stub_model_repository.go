//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// StubModelRepository keeps models and assets in memory, keyed by path.
type StubModelRepository struct {
	Models       map[string]*entities.Model
	AssetFiles   map[string][]byte
	IntegrityErr error
	SaveErr      error
	Saved        []*entities.Model
}

var _ repositories.ModelRepository = (*StubModelRepository)(nil)

// NewStubModelRepository creates an empty in-memory store.
func NewStubModelRepository() *StubModelRepository {
	return &StubModelRepository{Models: map[string]*entities.Model{}, AssetFiles: map[string][]byte{}}
}

// Put stores a copy of the model under path.
func (s *StubModelRepository) Put(path string, model *entities.Model) {
	c := model.DeepCopy()
	c.File = path
	s.Models[path] = c
}

func (s *StubModelRepository) Load(path string) (*entities.Model, error) {
	m, ok := s.Models[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrModelNotFound, path)
	}
	c := m.DeepCopy()
	c.File = path
	return c, nil
}

func (s *StubModelRepository) Save(model *entities.Model) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saved = append(s.Saved, model.DeepCopy())
	s.Put(model.File, model)
	return nil
}

func (s *StubModelRepository) IsDirty(*entities.Model) bool { return false }

func (s *StubModelRepository) CheckIntegrity(*entities.Model) error { return s.IntegrityErr }

func (s *StubModelRepository) Assets(model *entities.Model) repositories.AssetStore {
	return &stubAssetStore{files: s.AssetFiles, base: filepath.Dir(model.File)}
}

type stubAssetStore struct {
	files map[string][]byte
	base  string
}

func (a *stubAssetStore) GetBytes(path string) ([]byte, bool, error) {
	data, ok := a.files[filepath.Join(a.base, path)]
	return data, ok, nil
}

func (a *stubAssetStore) PutBytes(path string, data []byte) error {
	a.files[filepath.Join(a.base, path)] = data
	return nil
}

func errNotExist(path string) error {
	return fmt.Errorf("%s: %w", path, fs.ErrNotExist)
}
