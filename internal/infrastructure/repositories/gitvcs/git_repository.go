package gitvcs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// GitRepository implements repositories.VCSRepository on top of go-git.
type GitRepository struct {
	repository entities.Repository
	repo       *git.Repository
	settings   *entities.Settings
	auth       *AuthRegistry
}

// Open opens the repository living in the handle's working folder.
func Open(repository entities.Repository, settings *entities.Settings, auth *AuthRegistry) (*GitRepository, error) {
	if _, err := os.Stat(repository.GitFolder()); err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", repository, err)
	}
	repo, err := git.PlainOpen(repository.WorkingFolder())
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", repository, err)
	}
	return newGitRepository(repository, repo, settings, auth), nil
}

func newGitRepository(
	repository entities.Repository, repo *git.Repository, settings *entities.Settings, auth *AuthRegistry,
) *GitRepository {
	if settings == nil {
		settings = entities.DefaultSettings()
	}
	if auth == nil {
		auth = NewDefaultAuthRegistry()
	}
	return &GitRepository{repository: repository, repo: repo, settings: settings, auth: auth}
}

// Repository returns the handle this VCS state belongs to.
func (it *GitRepository) Repository() entities.Repository { return it.repository }

// Close releases the object storage.
func (it *GitRepository) Close() error {
	if closer, ok := it.repo.Storer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// HasChangesToCommit reports whether the working copy differs from HEAD,
// untracked files included.
func (it *GitRepository) HasChangesToCommit() (bool, error) {
	wt, err := it.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read worktree status: %w", err)
	}
	return !status.IsClean(), nil
}

// CommitChanges stages everything and commits. Amending replaces the tip
// commit, keeping its parents.
func (it *GitRepository) CommitChanges(message string, amend bool) (*entities.CommitInfo, error) {
	if amend {
		if _, err := it.repo.Head(); err != nil {
			if errors.Is(err, plumbing.ErrReferenceNotFound) {
				return nil, entities.ErrNothingToAmend
			}
			return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
	} else {
		dirty, err := it.HasChangesToCommit()
		if err != nil {
			return nil, err
		}
		if !dirty {
			logger.Debugf("[git] Nothing to commit in %s", it.repository.Name())
			return nil, nil //nolint:nilnil // nothing to commit is not an error
		}
	}

	wt, err := it.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	if err = wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("failed to stage changes: %w", err)
	}

	signature := it.signature()
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            signature,
		Committer:         signature,
		Amend:             amend,
		AllowEmptyCommits: amend,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	logger.Infof("[git] Committed %s in %s", hash.String()[:7], it.repository.Name())
	return it.commitInfo(hash)
}

// ResetToRef moves the current branch to ref and discards every working
// copy edit, untracked files included.
func (it *GitRepository) ResetToRef(ref string) error {
	hash, err := it.resolve(ref)
	if err != nil {
		return err
	}
	wt, err := it.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if err = wt.Reset(&git.ResetOptions{Commit: hash, Mode: git.HardReset}); err != nil {
		return fmt.Errorf("failed to reset to %s: %w", ref, err)
	}
	if err = wt.Clean(&git.CleanOptions{Dir: true}); err != nil {
		return fmt.Errorf("failed to remove untracked files: %w", err)
	}
	it.clearMergeState()
	logger.Debugf("[git] Reset %s to %s", it.repository.Name(), hash.String()[:7])
	return nil
}

// IsAtHead reports whether rev resolves to the HEAD commit.
func (it *GitRepository) IsAtHead(rev string) (bool, error) {
	head, err := it.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	hash, err := it.resolve(rev)
	if err != nil {
		return false, err
	}
	return hash == head.Hash(), nil
}

// CommitCount counts the commits reachable from rev.
func (it *GitRepository) CommitCount(rev string) (int, error) {
	commit, err := it.commitObject(rev)
	if err != nil {
		return 0, err
	}
	count := 0
	err = object.NewCommitPreorderIter(commit, nil, nil).ForEach(func(*object.Commit) error {
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk history of %s: %w", rev, err)
	}
	return count, nil
}

// ParentCount returns the number of parents of rev.
func (it *GitRepository) ParentCount(rev string) (int, error) {
	commit, err := it.commitObject(rev)
	if err != nil {
		return 0, err
	}
	return commit.NumParents(), nil
}

// MergeBase returns the best common ancestor of both revisions.
func (it *GitRepository) MergeBase(rev1, rev2 string) (string, error) {
	c1, err := it.commitObject(rev1)
	if err != nil {
		return "", err
	}
	c2, err := it.commitObject(rev2)
	if err != nil {
		return "", err
	}
	bases, err := c1.MergeBase(c2)
	if err != nil {
		return "", fmt.Errorf("failed to compute merge base of %s and %s: %w", rev1, rev2, err)
	}
	if len(bases) == 0 {
		return "", nil
	}
	return bases[0].Hash.String(), nil
}

// IsMergedInto reports whether rev is reachable from into.
func (it *GitRepository) IsMergedInto(rev, into string) (bool, error) {
	commit, err := it.commitObject(rev)
	if err != nil {
		return false, err
	}
	target, err := it.commitObject(into)
	if err != nil {
		return false, err
	}
	ok, err := commit.IsAncestor(target)
	if err != nil {
		return false, fmt.Errorf("failed to check ancestry of %s: %w", rev, err)
	}
	return ok, nil
}

// ExtractCommit writes every file of rev into dir.
func (it *GitRepository) ExtractCommit(rev, dir string) error {
	commit, err := it.commitObject(rev)
	if err != nil {
		return err
	}
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("failed to read tree of %s: %w", rev, err)
	}
	err = tree.Files().ForEach(func(f *object.File) error {
		return writeTreeFile(dir, f)
	})
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", rev, err)
	}
	return nil
}

// FileContents reads one file of rev.
func (it *GitRepository) FileContents(rev, path string) ([]byte, error) {
	commit, err := it.commitObject(rev)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", rev, err)
	}
	file, err := tree.File(filepath.ToSlash(path))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%s at %s: %w", path, rev, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, rev, err)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, rev, err)
	}
	return []byte(content), nil
}

// HeadCommit returns the tip of the current branch.
func (it *GitRepository) HeadCommit() (*entities.CommitInfo, error) {
	head, err := it.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, entities.ErrNoHead
		}
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return it.commitInfo(head.Hash())
}

// Commit returns the commit rev resolves to.
func (it *GitRepository) Commit(rev string) (*entities.CommitInfo, error) {
	hash, err := it.resolve(rev)
	if err != nil {
		return nil, err
	}
	return it.commitInfo(hash)
}

// CurrentBranch returns the short name of the checked out branch, even when
// it has no commit yet. A detached HEAD yields an empty name.
func (it *GitRepository) CurrentBranch() (string, error) {
	head, err := it.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference {
		return "", nil
	}
	return head.Target().Short(), nil
}

// Log walks the history from rev, newest first. A limit of zero walks it all.
func (it *GitRepository) Log(rev string, limit int) ([]*entities.CommitInfo, error) {
	hash, err := it.resolve(rev)
	if err != nil {
		if errors.Is(err, entities.ErrNoHead) {
			return nil, nil
		}
		return nil, err
	}
	iter, err := it.repo.Log(&git.LogOptions{From: hash})
	if err != nil {
		return nil, fmt.Errorf("failed to read log of %s: %w", rev, err)
	}
	defer iter.Close()

	var out []*entities.CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(out) >= limit {
			return errStopWalk
		}
		out = append(out, toCommitInfo(c))
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return nil, fmt.Errorf("failed to read log of %s: %w", rev, err)
	}
	return out, nil
}

var errStopWalk = errors.New("stop walk")

func (it *GitRepository) resolve(rev string) (plumbing.Hash, error) {
	hash, err := it.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		if rev == "HEAD" && errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, entities.ErrNoHead
		}
		return plumbing.ZeroHash, fmt.Errorf("failed to resolve %q: %w", rev, err)
	}
	return *hash, nil
}

func (it *GitRepository) commitObject(rev string) (*object.Commit, error) {
	hash, err := it.resolve(rev)
	if err != nil {
		return nil, err
	}
	commit, err := it.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", rev, err)
	}
	return commit, nil
}

func (it *GitRepository) commitInfo(hash plumbing.Hash) (*entities.CommitInfo, error) {
	commit, err := it.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	return toCommitInfo(commit), nil
}

func (it *GitRepository) signature() *object.Signature {
	author := it.settings.Author()
	return &object.Signature{Name: author.Name, Email: author.Email, When: nowFunc()}
}

func toCommitInfo(c *object.Commit) *entities.CommitInfo {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return &entities.CommitInfo{
		Hash:         c.Hash.String(),
		ParentHashes: parents,
		Author:       toSignature(c.Author),
		Committer:    toSignature(c.Committer),
		Message:      c.Message,
	}
}

func toSignature(s object.Signature) entities.Signature {
	return entities.Signature{Name: s.Name, Email: s.Email, When: s.When}
}

func writeTreeFile(dir string, f *object.File) error {
	target := filepath.Join(dir, filepath.FromSlash(f.Name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	mode, err := f.Mode.ToOSFileMode()
	if err != nil || mode.Perm() == 0 {
		mode = 0o644
	}
	reader, err := f.Reader()
	if err != nil {
		return err
	}
	defer reader.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, reader); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
