package modelfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FolderAssetStore keeps assets as plain files below a base folder. Asset
// paths are slash separated and relative to that folder.
type FolderAssetStore struct {
	base string
}

// NewFolderAssetStore creates a store rooted at base.
func NewFolderAssetStore(base string) *FolderAssetStore {
	return &FolderAssetStore{base: base}
}

// GetBytes returns the content of an asset, found is false when it is absent.
func (it *FolderAssetStore) GetBytes(path string) ([]byte, bool, error) {
	full, err := it.resolve(path)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read asset %q: %w", path, err)
	}
	return data, true, nil
}

// PutBytes writes an asset, creating its folder when needed.
func (it *FolderAssetStore) PutBytes(path string, data []byte) error {
	full, err := it.resolve(path)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(full), dirMode); err != nil {
		return fmt.Errorf("failed to create asset folder: %w", err)
	}
	if err = os.WriteFile(full, data, fileMode); err != nil {
		return fmt.Errorf("failed to write asset %q: %w", path, err)
	}
	return nil
}

func (it *FolderAssetStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("asset path %q escapes the model folder", path)
	}
	return filepath.Join(it.base, clean), nil
}
