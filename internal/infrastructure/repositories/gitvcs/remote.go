package gitvcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// SetRemoteURL points the configured remote at url, creating it when needed.
// An empty url removes the remote.
func (it *GitRepository) SetRemoteURL(url string) error {
	name := it.remoteName()
	if url == "" {
		if err := it.repo.DeleteRemote(name); err != nil && !errors.Is(err, git.ErrRemoteNotFound) {
			return fmt.Errorf("failed to remove remote %q: %w", name, err)
		}
		return nil
	}

	cfg, err := it.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}
	if remote, ok := cfg.Remotes[name]; ok {
		remote.URLs = []string{url}
		if err = it.repo.SetConfig(cfg); err != nil {
			return fmt.Errorf("failed to update remote %q: %w", name, err)
		}
		return nil
	}
	if _, err = it.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{url}}); err != nil {
		return fmt.Errorf("failed to create remote %q: %w", name, err)
	}
	return nil
}

// RemoteURL returns the URL of the configured remote, empty when there is none.
func (it *GitRepository) RemoteURL() (string, error) {
	remote, err := it.repo.Remote(it.remoteName())
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return urls[0], nil
}

// Push sends the current branch to the same name on the remote and sets up
// tracking for it.
func (it *GitRepository) Push(
	ctx context.Context, creds *entities.Credentials, progress io.Writer,
) (*entities.PushResult, error) {
	url, auth, err := it.remoteAccess(creds)
	if err != nil {
		return nil, err
	}
	branch, err := it.CurrentBranch()
	if err != nil {
		return nil, err
	}
	if branch == "" {
		return nil, errors.New("cannot push a detached HEAD")
	}
	local, err := it.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, entities.ErrNoHead
		}
		return nil, fmt.Errorf("failed to resolve branch %q: %w", branch, err)
	}

	remote := it.remoteName()
	trackingName := plumbing.NewRemoteReferenceName(remote, branch)
	oldHash := it.refHash(trackingName)
	refSpec := config.RefSpec(fmt.Sprintf("%s:%s", local.Name(), local.Name()))

	logger.Infof("[git] Pushing %s to %s", branch, url)
	err = it.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       auth,
		Progress:   progress,
	})
	result := &entities.PushResult{Remote: remote}
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		result.UpToDate = true
	case err != nil:
		return nil, fmt.Errorf("failed to push %s to %s: %w", branch, remote, err)
	default:
		result.Updates = append(result.Updates, entities.RefUpdate{
			Name:    local.Name().String(),
			OldHash: oldHash,
			NewHash: local.Hash().String(),
		})
		// go-git only updates tracking refs for the remote's fetch refspecs
		if refErr := it.repo.Storer.SetReference(plumbing.NewHashReference(trackingName, local.Hash())); refErr != nil {
			logger.Debugf("[git] Could not update %s: %v", trackingName, refErr)
		}
	}

	if err = it.ensureTracking(branch); err != nil {
		return nil, err
	}
	return result, nil
}

// Fetch updates the remote-tracking refs, optionally pruning those whose
// branch disappeared from the remote.
func (it *GitRepository) Fetch(
	ctx context.Context, creds *entities.Credentials, progress io.Writer, prune bool,
) (*entities.FetchResult, error) {
	url, auth, err := it.remoteAccess(creds)
	if err != nil {
		return nil, err
	}
	remote := it.remoteName()
	before, err := it.remoteRefs(remote)
	if err != nil {
		return nil, err
	}

	logger.Infof("[git] Fetching from %s", url)
	err = it.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remote,
		Auth:       auth,
		Progress:   progress,
		Prune:      prune,
	})
	result := &entities.FetchResult{Remote: remote}
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		result.UpToDate = true
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", remote, err)
	}

	after, err := it.remoteRefs(remote)
	if err != nil {
		return nil, err
	}
	for name, hash := range after {
		if old := before[name]; old != hash {
			result.Updates = append(result.Updates, entities.RefUpdate{Name: name, OldHash: old, NewHash: hash})
		}
	}
	for name, hash := range before {
		if _, ok := after[name]; !ok {
			result.Updates = append(result.Updates, entities.RefUpdate{Name: name, OldHash: hash, Deleted: true})
			result.Pruned = append(result.Pruned, name)
		}
	}
	sortUpdates(result.Updates)
	sortStrings(result.Pruned)
	result.UpToDate = result.UpToDate || len(result.Updates) == 0
	return result, nil
}

// DeleteLocalBranch removes a local branch and its tracking configuration.
// The current branch cannot be deleted.
func (it *GitRepository) DeleteLocalBranch(name string) error {
	short := strings.TrimPrefix(name, entities.LocalBranchPrefix)
	current, err := it.CurrentBranch()
	if err != nil {
		return err
	}
	if short == current {
		return fmt.Errorf("cannot delete the current branch %q", short)
	}
	refName := plumbing.NewBranchReferenceName(short)
	if _, err = it.repo.Storer.Reference(refName); err != nil {
		return fmt.Errorf("%w: %s", entities.ErrBranchNotFound, short)
	}
	if err = it.repo.Storer.RemoveReference(refName); err != nil {
		return fmt.Errorf("failed to delete branch %q: %w", short, err)
	}
	if err = it.repo.DeleteBranch(short); err != nil && !errors.Is(err, git.ErrBranchNotFound) {
		return fmt.Errorf("failed to delete tracking config of %q: %w", short, err)
	}
	logger.Infof("[git] Deleted local branch %s", short)
	return nil
}

// DeleteRemoteBranch deletes the branch on the remote and drops its
// remote-tracking ref.
func (it *GitRepository) DeleteRemoteBranch(ctx context.Context, name string, creds *entities.Credentials) error {
	_, auth, err := it.remoteAccess(creds)
	if err != nil {
		return err
	}
	remote := it.remoteName()
	short := entities.ShortBranchName(name)
	refSpec := config.RefSpec(":" + plumbing.NewBranchReferenceName(short).String())
	err = it.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to delete remote branch %q: %w", short, err)
	}
	tracking := plumbing.NewRemoteReferenceName(remote, short)
	if rmErr := it.repo.Storer.RemoveReference(tracking); rmErr != nil {
		logger.Debugf("[git] Could not remove %s: %v", tracking, rmErr)
	}
	logger.Infof("[git] Deleted remote branch %s/%s", remote, short)
	return nil
}

func (it *GitRepository) remoteName() string {
	if it.settings.Remote.Name != "" {
		return it.settings.Remote.Name
	}
	return entities.DefaultRemoteName
}

func (it *GitRepository) remoteAccess(creds *entities.Credentials) (string, transport.AuthMethod, error) {
	url, err := it.RemoteURL()
	if err != nil {
		return "", nil, err
	}
	if url == "" {
		return "", nil, entities.ErrNoRemote
	}
	auth, err := it.auth.ForURL(url, creds)
	if err != nil {
		return "", nil, err
	}
	return url, auth, nil
}

func (it *GitRepository) ensureTracking(branch string) error {
	cfg, err := it.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}
	if existing, ok := cfg.Branches[branch]; ok && existing.Remote != "" && existing.Merge != "" {
		return nil
	}
	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: it.remoteName(),
		Merge:  plumbing.NewBranchReferenceName(branch),
	}
	if err = it.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to set upstream of %q: %w", branch, err)
	}
	return nil
}

func (it *GitRepository) remoteRefs(remote string) (map[string]string, error) {
	refs, err := it.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer refs.Close()
	prefix := entities.RemoteBranchPrefix + remote + "/"
	out := map[string]string{}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference && strings.HasPrefix(ref.Name().String(), prefix) {
			out[ref.Name().String()] = ref.Hash().String()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	return out, nil
}

func (it *GitRepository) refHash(name plumbing.ReferenceName) string {
	ref, err := it.repo.Storer.Reference(name)
	if err != nil || ref.Type() != plumbing.HashReference {
		return ""
	}
	return ref.Hash().String()
}
