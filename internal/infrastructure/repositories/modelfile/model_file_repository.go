package modelfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

const (
	yamlIndent   = 2
	fileMode     = 0o644
	dirMode      = 0o755
	tempFileGlob = ".model-*.yaml"
)

// ModelFileRepository implements repositories.ModelRepository for YAML model documents.
type ModelFileRepository struct{}

// NewModelFileRepository creates the YAML document subsystem.
func NewModelFileRepository() *ModelFileRepository {
	return &ModelFileRepository{}
}

// Load reads and parses a model document. A missing file yields an error
// wrapping both entities.ErrModelNotFound and fs.ErrNotExist.
func (it *ModelFileRepository) Load(path string) (*entities.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", entities.ErrModelNotFound, err)
		}
		return nil, fmt.Errorf("failed to read model %q: %w", path, err)
	}

	var model entities.Model
	if err = yaml.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to parse model %q: %w", path, err)
	}
	if model.Root == nil {
		return nil, fmt.Errorf("failed to parse model %q: document has no root", path)
	}
	model.File = path
	if model.Digest, err = digest(&model); err != nil {
		return nil, err
	}
	logger.Debugf("[model] Loaded %s (%d objects)", path, len(model.Objects()))
	return &model, nil
}

// Save writes the document to its file through a temporary file in the same folder.
func (it *ModelFileRepository) Save(model *entities.Model) error {
	if model == nil || model.Root == nil {
		return errors.New("cannot save an empty model")
	}
	if model.File == "" {
		return errors.New("model has no file to save to")
	}
	data, err := encode(model)
	if err != nil {
		return err
	}

	dir := filepath.Dir(model.File)
	if err = os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, tempFileGlob)
	if err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to save model: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	if err = os.Chmod(tmpName, fileMode); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	if err = os.Rename(tmpName, model.File); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}

	model.Digest = hash(data)
	logger.Debugf("[model] Saved %s", model.File)
	return nil
}

// IsDirty reports whether the in-memory document differs from what was last
// loaded or saved.
func (it *ModelFileRepository) IsDirty(model *entities.Model) bool {
	if model == nil {
		return false
	}
	current, err := digest(model)
	if err != nil {
		return true
	}
	return current != model.Digest
}

// Assets returns the asset store next to the model document.
func (it *ModelFileRepository) Assets(model *entities.Model) repositories.AssetStore {
	return NewFolderAssetStore(filepath.Dir(model.File))
}

func encode(model *entities.Model) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(model); err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode model: %w", err)
	}
	return buf.Bytes(), nil
}

func digest(model *entities.Model) (string, error) {
	data, err := encode(model)
	if err != nil {
		return "", err
	}
	return hash(data), nil
}

func hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
