//go:build integration

// Package gitfixture builds real repositories on disk for integration tests.
// Remotes are bare repositories reached over go-git's file transport, which
// runs the git binary's upload-pack and receive-pack.
package gitfixture

import (
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
	"github.com/rios0rios0/modelgit/internal/infrastructure/repositories/gitvcs"
	"github.com/rios0rios0/modelgit/internal/infrastructure/repositories/modelfile"
)

// Settings returns test settings with a fixed author.
func Settings() *entities.Settings {
	s := entities.DefaultSettings()
	s.User.Name = "Tester"
	s.User.Email = "tester@example.com"
	return s
}

// Env bundles the real adapters used by integration tests.
type Env struct {
	Settings *entities.Settings
	Models   *modelfile.ModelFileRepository
	Factory  *gitvcs.Factory
}

// NewEnv wires the go-git factory and the YAML document store.
func NewEnv(settings *entities.Settings) *Env {
	models := modelfile.NewModelFileRepository()
	return &Env{
		Settings: settings,
		Models:   models,
		Factory:  gitvcs.NewFactory(settings, gitvcs.NewDefaultAuthRegistry(), models),
	}
}

// NewBareRemote creates an empty bare repository whose HEAD names the trunk
// and returns its path.
func NewBareRemote(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "remote.git")
	r, err := git.PlainInit(dir, true)
	require.NoError(t, err)
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(entities.DefaultTrunkName))
	require.NoError(t, r.Storer.SetReference(head))
	return dir
}

// InitRepository creates a repository holding model and commits it.
func (e *Env) InitRepository(t *testing.T, model *entities.Model) (entities.Repository, repositories.VCSRepository) {
	t.Helper()
	repo := entities.NewRepository(filepath.Join(t.TempDir(), "work"))
	vcs, err := e.Factory.Init(repo, model)
	require.NoError(t, err)
	t.Cleanup(func() { _ = vcs.Close() })
	_, err = vcs.CommitChanges("Initial commit", false)
	require.NoError(t, err)
	return repo, vcs
}

// Clone clones url into a fresh working folder and opens it.
func (e *Env) Clone(t *testing.T, url string) (entities.Repository, repositories.VCSRepository) {
	t.Helper()
	repo := entities.NewRepository(filepath.Join(t.TempDir(), "clone"))
	_, err := git.PlainClone(repo.WorkingFolder(), false, &git.CloneOptions{
		URL:           url,
		RemoteName:    e.Settings.Remote.Name,
		ReferenceName: plumbing.NewBranchReferenceName(e.Settings.Branches.Trunk),
	})
	require.NoError(t, err)
	vcs, err := e.Factory.Open(repo)
	require.NoError(t, err)
	t.Cleanup(func() { _ = vcs.Close() })
	return repo, vcs
}

// SaveModel writes model into the repository's working copy.
func (e *Env) SaveModel(t *testing.T, repo entities.Repository, model *entities.Model) {
	t.Helper()
	c := model.DeepCopy()
	c.File = repo.ModelFile()
	require.NoError(t, e.Models.Save(c))
}

// LoadModel reads the model of the repository's working copy.
func (e *Env) LoadModel(t *testing.T, repo entities.Repository) *entities.Model {
	t.Helper()
	model, err := e.Models.Load(repo.ModelFile())
	require.NoError(t, err)
	return model
}

// Commit saves model and commits it with message.
func (e *Env) Commit(
	t *testing.T, repo entities.Repository, vcs repositories.VCSRepository, model *entities.Model, message string,
) *entities.CommitInfo {
	t.Helper()
	e.SaveModel(t, repo, model)
	commit, err := vcs.CommitChanges(message, false)
	require.NoError(t, err)
	require.NotNil(t, commit)
	return commit
}

// Checkout switches the working copy to a branch, creating it at HEAD when asked.
func Checkout(t *testing.T, repo entities.Repository, branch string, create bool) {
	t.Helper()
	r, err := git.PlainOpen(repo.WorkingFolder())
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	}))
}

// Tag creates a tag at HEAD, annotated when message is not empty.
func Tag(t *testing.T, repo entities.Repository, name, message string) {
	t.Helper()
	r, err := git.PlainOpen(repo.WorkingFolder())
	require.NoError(t, err)
	head, err := r.Head()
	require.NoError(t, err)
	var opts *git.CreateTagOptions
	if message != "" {
		author := Settings().Author()
		opts = &git.CreateTagOptions{
			Message: message,
			Tagger:  &object.Signature{Name: author.Name, Email: author.Email, When: time.Now()},
		}
	}
	_, err = r.CreateTag(name, head.Hash(), opts)
	require.NoError(t, err)
}
