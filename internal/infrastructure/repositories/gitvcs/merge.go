package gitvcs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

const mergeHeadRef plumbing.ReferenceName = "MERGE_HEAD"

//nolint:gochecknoglobals // replaced in tests
var nowFunc = time.Now

// StageMerge records rev as MERGE_HEAD and merges every file except the
// model document into the working tree. The model document is left as ours:
// it is merged structurally by the caller. Conflicting files keep our side.
func (it *GitRepository) StageMerge(rev string) (entities.StageResult, error) {
	ours, err := it.commitObject("HEAD")
	if err != nil {
		return entities.StageMerged, err
	}
	theirs, err := it.commitObject(rev)
	if err != nil {
		return entities.StageMerged, err
	}
	contained, err := theirs.IsAncestor(ours)
	if err != nil {
		return entities.StageMerged, fmt.Errorf("failed to check ancestry of %s: %w", rev, err)
	}
	if contained {
		return entities.StageAlreadyUpToDate, nil
	}

	var baseFiles map[string]plumbing.Hash
	bases, err := ours.MergeBase(theirs)
	if err != nil {
		return entities.StageMerged, fmt.Errorf("failed to compute merge base: %w", err)
	}
	if len(bases) > 0 {
		if baseFiles, err = treeFiles(bases[0]); err != nil {
			return entities.StageMerged, err
		}
	}
	ourFiles, err := treeFiles(ours)
	if err != nil {
		return entities.StageMerged, err
	}
	theirFiles, err := treeFiles(theirs)
	if err != nil {
		return entities.StageMerged, err
	}
	theirTree, err := theirs.Tree()
	if err != nil {
		return entities.StageMerged, fmt.Errorf("failed to read tree of %s: %w", rev, err)
	}

	for _, path := range unionPaths(baseFiles, ourFiles, theirFiles) {
		if path == entities.ModelFileName {
			continue
		}
		base, inBase := baseFiles[path]
		our, inOurs := ourFiles[path]
		their, inTheirs := theirFiles[path]
		switch {
		case inOurs == inTheirs && our == their:
		case inOurs == inBase && our == base:
			if err = it.takeTheirs(theirTree, path, inTheirs); err != nil {
				return entities.StageMerged, err
			}
		case inTheirs == inBase && their == base:
		default:
			logger.Warnf("[git] Conflicting changes to %s, keeping ours", path)
		}
	}

	if err = it.repo.Storer.SetReference(plumbing.NewHashReference(mergeHeadRef, theirs.Hash)); err != nil {
		return entities.StageMerged, fmt.Errorf("failed to record MERGE_HEAD: %w", err)
	}
	logger.Debugf("[git] Staged merge of %s into %s", theirs.Hash.String()[:7], ours.Hash.String()[:7])
	return entities.StageMerged, nil
}

// CommitMerge commits the working tree with HEAD and MERGE_HEAD as parents.
func (it *GitRepository) CommitMerge(message string) (*entities.CommitInfo, error) {
	head, err := it.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	mergeHead, err := it.repo.Storer.Reference(mergeHeadRef)
	if err != nil {
		return nil, fmt.Errorf("no merge in progress: %w", err)
	}
	wt, err := it.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	if err = wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("failed to stage merge: %w", err)
	}
	signature := it.signature()
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            signature,
		Committer:         signature,
		Parents:           []plumbing.Hash{head.Hash(), mergeHead.Hash()},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit merge: %w", err)
	}
	it.clearMergeState()
	logger.Infof("[git] Committed merge %s in %s", hash.String()[:7], it.repository.Name())
	return it.commitInfo(hash)
}

// AbortMerge restores HEAD and forgets the staged merge.
func (it *GitRepository) AbortMerge() error {
	if !it.IsMerging() {
		return nil
	}
	return it.ResetToRef("HEAD")
}

// IsMerging reports whether a staged merge awaits its commit.
func (it *GitRepository) IsMerging() bool {
	_, err := it.repo.Storer.Reference(mergeHeadRef)
	return err == nil
}

func (it *GitRepository) clearMergeState() {
	if err := it.repo.Storer.RemoveReference(mergeHeadRef); err != nil {
		logger.Debugf("[git] Could not remove MERGE_HEAD: %v", err)
	}
}

func (it *GitRepository) takeTheirs(tree *object.Tree, path string, exists bool) error {
	target := filepath.Join(it.repository.WorkingFolder(), filepath.FromSlash(path))
	if !exists {
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}
	file, err := tree.File(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err = writeTreeFile(it.repository.WorkingFolder(), file); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func treeFiles(commit *object.Commit) (map[string]plumbing.Hash, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", commit.Hash, err)
	}
	files := map[string]plumbing.Hash{}
	err = tree.Files().ForEach(func(f *object.File) error {
		files[f.Name] = f.Hash
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files of %s: %w", commit.Hash, err)
	}
	return files, nil
}

func unionPaths(sets ...map[string]plumbing.Hash) []string {
	seen := map[string]bool{}
	var paths []string
	for _, set := range sets {
		for p := range set {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	sort.Strings(paths)
	return paths
}
