package entities

import (
	"os"
	"path/filepath"
)

const (
	// ModelFileName is the fixed location of the model document inside a working folder.
	ModelFileName = "model.yaml"
	// AssetsFolderName holds embedded binary resources (images) referenced by the model.
	AssetsFolderName = "images"
	// GitFolderName is the VCS metadata folder.
	GitFolderName = ".git"
	// IgnoreFileName lists editor and OS noise excluded from commits.
	IgnoreFileName = ".gitignore"
)

// Repository is a lightweight handle on a working folder. It holds no open
// resources, two handles are equal when they point at the same working folder.
type Repository struct {
	workingFolder string
}

// NewRepository wraps the given folder path. Relative paths are made absolute.
func NewRepository(folder string) Repository {
	abs, err := filepath.Abs(folder)
	if err != nil {
		abs = filepath.Clean(folder)
	}
	return Repository{workingFolder: abs}
}

// WorkingFolder returns the absolute working folder path.
func (it Repository) WorkingFolder() string { return it.workingFolder }

// GitFolder returns the VCS metadata folder.
func (it Repository) GitFolder() string {
	return filepath.Join(it.workingFolder, GitFolderName)
}

// ModelFile returns the path of the model document.
func (it Repository) ModelFile() string {
	return filepath.Join(it.workingFolder, ModelFileName)
}

// AssetsFolder returns the folder holding embedded binary resources.
func (it Repository) AssetsFolder() string {
	return filepath.Join(it.workingFolder, AssetsFolderName)
}

// Name is the display name of the repository, taken from the working folder.
func (it Repository) Name() string {
	return filepath.Base(it.workingFolder)
}

// IsOpen reports whether the working folder currently holds a repository.
func (it Repository) IsOpen() bool {
	info, err := os.Stat(it.GitFolder())
	return err == nil && info.IsDir()
}

// HasModelFile reports whether the model document exists on disk.
func (it Repository) HasModelFile() bool {
	_, err := os.Stat(it.ModelFile())
	return err == nil
}

// Key is the identity used for map lookups.
func (it Repository) Key() string { return it.workingFolder }

// Equal compares two handles by working folder only.
func (it Repository) Equal(other Repository) bool {
	return it.workingFolder == other.workingFolder
}

func (it Repository) String() string { return it.workingFolder }
