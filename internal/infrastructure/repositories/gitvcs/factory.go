package gitvcs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// ignoreFileContent excludes editor and OS noise from commits.
const ignoreFileContent = `# editor and OS files
.DS_Store
Thumbs.db
desktop.ini
*.bak
*.tmp
*~
`

// Factory opens and creates go-git repositories.
type Factory struct {
	settings *entities.Settings
	auth     *AuthRegistry
	models   repositories.ModelRepository
}

// NewFactory creates a factory sharing the settings and auth registry with
// every repository it opens.
func NewFactory(
	settings *entities.Settings, auth *AuthRegistry, models repositories.ModelRepository,
) *Factory {
	return &Factory{settings: settings, auth: auth, models: models}
}

// Open opens an existing repository.
func (f *Factory) Open(repo entities.Repository) (repositories.VCSRepository, error) {
	return Open(repo, f.settings, f.auth)
}

// Init creates the working folder, an empty repository whose default branch
// is the trunk, the ignore file and the model document. Nothing is committed.
func (f *Factory) Init(repo entities.Repository, model *entities.Model) (repositories.VCSRepository, error) {
	if repo.IsOpen() {
		return nil, fmt.Errorf("repository already exists in %s", repo)
	}
	if err := os.MkdirAll(repo.WorkingFolder(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create working folder: %w", err)
	}

	trunk := f.settings.Branches.Trunk
	gitRepo, err := git.PlainInitWithOptions(repo.WorkingFolder(), &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(trunk)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repository in %s: %w", repo, err)
	}

	cfg, err := gitRepo.Config()
	if err != nil {
		return nil, fmt.Errorf("failed to read repository config: %w", err)
	}
	cfg.Raw.Section("core").SetOption("autocrlf", autoCRLF())
	cfg.Init.DefaultBranch = trunk
	if err = gitRepo.SetConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to write repository config: %w", err)
	}

	if err = os.WriteFile(filepath.Join(repo.WorkingFolder(), entities.IgnoreFileName),
		[]byte(ignoreFileContent), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", entities.IgnoreFileName, err)
	}

	if model != nil {
		model.File = repo.ModelFile()
		if err = f.models.Save(model); err != nil {
			return nil, err
		}
	}
	logger.Infof("[git] Initialized repository %s on branch %s", repo.Name(), trunk)

	return newGitRepository(repo, gitRepo, f.settings, f.auth), nil
}

// autoCRLF returns the line ending conversion git uses by default on the platform.
func autoCRLF() string {
	if runtime.GOOS == "windows" {
		return "true"
	}
	return "input"
}
