package gitvcs

import (
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// maxTagDepth bounds the peeling of tags pointing at tags.
const maxTagDepth = 8

// Tags lists every tag with the commit it resolves to. A tag is orphaned
// when no branch reaches its commit.
func (it *GitRepository) Tags() ([]*entities.TagInfo, error) {
	snap, err := it.snapshot()
	if err != nil {
		return nil, err
	}
	var tips []plumbing.Hash
	for _, h := range snap.local {
		tips = append(tips, h)
	}
	for _, h := range snap.remote {
		tips = append(tips, h)
	}
	reachable, err := it.reachable(tips...)
	if err != nil {
		return nil, err
	}

	iter, err := it.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer iter.Close()

	var tags []*entities.TagInfo
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		info := &entities.TagInfo{
			FullName:  ref.Name().String(),
			ShortName: ref.Name().Short(),
			RefHash:   ref.Hash().String(),
		}
		if tag, tagErr := it.repo.TagObject(ref.Hash()); tagErr == nil {
			info.Annotation = &entities.TagAnnotation{
				Hash:    tag.Hash.String(),
				Tagger:  toSignature(tag.Tagger),
				Message: tag.Message,
			}
		}
		if commitHash, ok := it.peelTag(ref.Hash()); ok {
			commit, commitErr := it.commitInfo(commitHash)
			if commitErr != nil {
				return commitErr
			}
			info.Commit = commit
			info.IsOrphaned = !reachable[commitHash]
		}
		tags = append(tags, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ShortName < tags[j].ShortName })
	return tags, nil
}

// peelTag follows annotated tags down to the commit they point at.
// Lightweight tags point at the commit directly.
func (it *GitRepository) peelTag(hash plumbing.Hash) (plumbing.Hash, bool) {
	if _, err := it.repo.CommitObject(hash); err == nil {
		return hash, true
	}
	cur := hash
	for range maxTagDepth {
		tag, err := it.repo.TagObject(cur)
		if err != nil {
			return plumbing.ZeroHash, false
		}
		switch tag.TargetType {
		case plumbing.CommitObject:
			return tag.Target, true
		case plumbing.TagObject:
			cur = tag.Target
		default:
			return plumbing.ZeroHash, false
		}
	}
	return plumbing.ZeroHash, false
}
