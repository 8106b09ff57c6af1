package gitvcs

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// refSnapshot is the ref state every BranchInfo of one query is computed from.
type refSnapshot struct {
	local   map[string]plumbing.Hash // short name -> tip
	remote  map[string]plumbing.Hash // full remote ref -> tip
	symref  map[string]bool          // full names of symbolic branch refs
	head    plumbing.Hash
	current string // short name of the checked out branch, may be unborn
	cfg     *config.Config
	primary string // resolved designated default branch
}

// BranchStatus builds the catalogue of every local and remote-tracking branch.
func (it *GitRepository) BranchStatus() (*entities.BranchStatus, error) {
	snap, err := it.snapshot()
	if err != nil {
		return nil, err
	}

	status := &entities.BranchStatus{}
	var names []string
	for short := range snap.local {
		names = append(names, entities.LocalBranchRef(short))
	}
	if snap.current != "" {
		if _, ok := snap.local[snap.current]; !ok {
			names = append(names, entities.LocalBranchRef(snap.current))
		}
	}
	sort.Strings(names)
	var remoteNames []string
	for full := range snap.remote {
		remoteNames = append(remoteNames, full)
	}
	sort.Strings(remoteNames)
	names = append(names, remoteNames...)

	for _, full := range names {
		info, infoErr := it.branchInfo(snap, full, true)
		if infoErr != nil {
			return nil, infoErr
		}
		status.Branches = append(status.Branches, info)
		if !info.IsCurrent {
			continue
		}
		if info.Remote {
			status.CurrentRemoteBranch = info
		} else {
			status.CurrentLocalBranch = info
		}
	}
	return status, nil
}

// Branch returns one branch by short, display or full name. Light snapshots
// only carry identity and IsRefAtHead.
func (it *GitRepository) Branch(name string, full bool) (*entities.BranchInfo, error) {
	snap, err := it.snapshot()
	if err != nil {
		return nil, err
	}
	fullName, ok := snap.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrBranchNotFound, name)
	}
	return it.branchInfo(snap, fullName, full)
}

// RefreshBranch recomputes the snapshot in place, keeping its mode.
func (it *GitRepository) RefreshBranch(info *entities.BranchInfo) error {
	if _, err := os.Stat(it.repository.GitFolder()); err != nil {
		return fmt.Errorf("failed to refresh branch %s: %w", info.FullName, err)
	}
	snap, err := it.snapshot()
	if err != nil {
		return err
	}
	fresh, err := it.branchInfo(snap, info.FullName, info.Full)
	if err != nil {
		return err
	}
	*info = *fresh
	return nil
}

func (it *GitRepository) snapshot() (*refSnapshot, error) {
	snap := &refSnapshot{
		local:  map[string]plumbing.Hash{},
		remote: map[string]plumbing.Hash{},
		symref: map[string]bool{},
	}
	refs, err := it.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer refs.Close()
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		if !name.IsBranch() && !name.IsRemote() {
			return nil
		}
		if name.IsRemote() && strings.HasSuffix(name.String(), "/HEAD") {
			return nil
		}
		hash := ref.Hash()
		if ref.Type() == plumbing.SymbolicReference {
			resolved, resolveErr := it.repo.Reference(name, true)
			if resolveErr != nil {
				return nil //nolint:nilerr // dangling symbolic refs are not branches
			}
			hash = resolved.Hash()
			snap.symref[name.String()] = true
		}
		if name.IsBranch() {
			snap.local[name.Short()] = hash
		} else {
			snap.remote[name.String()] = hash
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}

	if head, headErr := it.repo.Head(); headErr == nil {
		snap.head = head.Hash()
	}
	if snap.current, err = it.CurrentBranch(); err != nil {
		return nil, err
	}
	if snap.cfg, err = it.repo.Config(); err != nil {
		return nil, fmt.Errorf("failed to read repository config: %w", err)
	}
	snap.primary = it.designatedDefault(snap)
	return snap, nil
}

// designatedDefault resolves the default branch of the shared repository:
// the remote HEAD, then init.defaultBranch, then the legacy trunk when it is
// the only trunk present anywhere.
func (it *GitRepository) designatedDefault(snap *refSnapshot) string {
	remoteHead := plumbing.NewRemoteHEADReferenceName(it.remoteName())
	if ref, err := it.repo.Storer.Reference(remoteHead); err == nil && ref.Type() == plumbing.SymbolicReference {
		return entities.ShortBranchName(ref.Target().String())
	}
	if snap.cfg != nil && snap.cfg.Init.DefaultBranch != "" {
		return strings.TrimPrefix(snap.cfg.Init.DefaultBranch, entities.LocalBranchPrefix)
	}
	trunk, legacy := it.settings.Branches.Trunk, it.settings.Branches.LegacyTrunk
	if snap.existsAnywhere(legacy) && !snap.existsAnywhere(trunk) {
		return legacy
	}
	return trunk
}

func (it *GitRepository) isPrimary(snap *refSnapshot, short string) bool {
	if short == it.settings.Branches.Trunk {
		return true
	}
	return short == it.settings.Branches.LegacyTrunk && snap.primary == short
}

func (it *GitRepository) branchInfo(snap *refSnapshot, fullName string, full bool) (*entities.BranchInfo, error) {
	short := entities.ShortBranchName(fullName)
	remote := strings.HasPrefix(fullName, entities.RemoteBranchPrefix)
	info := &entities.BranchInfo{
		FullName:  fullName,
		ShortName: short,
		Remote:    remote,
		Symbolic:  snap.symref[fullName],
		Full:      full,
	}
	tip, hasTip := snap.tip(fullName)
	info.IsRefAtHead = hasTip && !snap.head.IsZero() && tip == snap.head
	if !full {
		return info, nil
	}

	remoteName := it.trackingRemote(snap, short)
	_, info.HasLocalRef = snap.local[short]
	if remote {
		info.HasRemoteRef = hasTip
	} else {
		_, info.HasRemoteRef = snap.remote[entities.RemoteBranchRef(remoteName, short)]
	}
	info.IsCurrent = snap.isCurrent(fullName, remoteName)
	info.IsPrimaryBranch = it.isPrimary(snap, short)

	if !hasTip {
		return info, nil
	}
	commit, err := it.repo.CommitObject(tip)
	if err != nil {
		return nil, fmt.Errorf("failed to read tip of %s: %w", fullName, err)
	}
	info.LatestCommit = toCommitInfo(commit)

	if info.IsPrimaryBranch {
		info.IsMerged = true
	} else if info.IsMerged, err = it.reachedByOtherBranch(snap, short, commit); err != nil {
		return nil, err
	}

	if !remote {
		info.IsRemoteDeleted = it.isRemoteDeleted(snap, short)
	}
	if err = it.fillDivergence(snap, info); err != nil {
		return nil, err
	}
	return info, nil
}

// fillDivergence compares the local branch of the pair against its upstream.
// Local branches need tracking configuration, remote ones pair with the local
// branch of the same short name.
func (it *GitRepository) fillDivergence(snap *refSnapshot, info *entities.BranchInfo) error {
	var localTip, upstreamTip plumbing.Hash
	var ok bool
	if info.Remote {
		if localTip, ok = snap.local[info.ShortName]; !ok {
			return nil
		}
		upstreamTip, _ = snap.tip(info.FullName)
	} else {
		upstream := it.upstreamRef(snap, info.ShortName)
		if upstream == "" {
			return nil
		}
		if upstreamTip, ok = snap.remote[upstream]; !ok {
			return nil
		}
		localTip = snap.local[info.ShortName]
	}

	ahead, behind, err := it.divergence(localTip, upstreamTip)
	if err != nil {
		return err
	}
	info.Ahead, info.Behind = ahead, behind
	info.HasUnpushedCommits = ahead > 0
	info.HasRemoteCommits = behind > 0
	return nil
}

func (it *GitRepository) upstreamRef(snap *refSnapshot, short string) string {
	branch, ok := snap.cfg.Branches[short]
	if !ok || branch.Remote == "" || branch.Merge == "" {
		return ""
	}
	return entities.RemoteBranchRef(branch.Remote, branch.Merge.Short())
}

func (it *GitRepository) trackingRemote(snap *refSnapshot, short string) string {
	if branch, ok := snap.cfg.Branches[short]; ok && branch.Remote != "" {
		return branch.Remote
	}
	return it.remoteName()
}

func (it *GitRepository) isRemoteDeleted(snap *refSnapshot, short string) bool {
	upstream := it.upstreamRef(snap, short)
	if upstream == "" {
		return false
	}
	_, exists := snap.remote[upstream]
	return !exists
}

func (it *GitRepository) reachedByOtherBranch(snap *refSnapshot, short string, tip *object.Commit) (bool, error) {
	others := map[plumbing.Hash]bool{}
	for name, hash := range snap.local {
		if name != short {
			others[hash] = true
		}
	}
	for full, hash := range snap.remote {
		if entities.ShortBranchName(full) != short {
			others[hash] = true
		}
	}
	for hash := range others {
		if hash == tip.Hash {
			return true, nil
		}
		other, err := it.repo.CommitObject(hash)
		if err != nil {
			logger.Debugf("[git] Skipping unreadable tip %s: %v", hash, err)
			continue
		}
		ok, err := tip.IsAncestor(other)
		if err != nil {
			return false, fmt.Errorf("failed to check ancestry: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// divergence counts the commits only reachable from a and only reachable from b.
func (it *GitRepository) divergence(a, b plumbing.Hash) (int, int, error) {
	if a == b {
		return 0, 0, nil
	}
	fromA, err := it.reachable(a)
	if err != nil {
		return 0, 0, err
	}
	fromB, err := it.reachable(b)
	if err != nil {
		return 0, 0, err
	}
	ahead, behind := 0, 0
	for h := range fromA {
		if !fromB[h] {
			ahead++
		}
	}
	for h := range fromB {
		if !fromA[h] {
			behind++
		}
	}
	return ahead, behind, nil
}

func (it *GitRepository) reachable(tips ...plumbing.Hash) (map[plumbing.Hash]bool, error) {
	seen := map[plumbing.Hash]bool{}
	for _, tip := range tips {
		if tip.IsZero() || seen[tip] {
			continue
		}
		commit, err := it.repo.CommitObject(tip)
		if err != nil {
			return nil, fmt.Errorf("failed to read commit %s: %w", tip, err)
		}
		err = object.NewCommitPreorderIter(commit, seen, nil).ForEach(func(c *object.Commit) error {
			seen[c.Hash] = true
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk history of %s: %w", tip, err)
		}
	}
	return seen, nil
}

func (s *refSnapshot) tip(fullName string) (plumbing.Hash, bool) {
	if strings.HasPrefix(fullName, entities.RemoteBranchPrefix) {
		h, ok := s.remote[fullName]
		return h, ok
	}
	h, ok := s.local[entities.ShortBranchName(fullName)]
	return h, ok
}

func (s *refSnapshot) isCurrent(fullName, remoteName string) bool {
	if s.current == "" {
		return false
	}
	if strings.HasPrefix(fullName, entities.RemoteBranchPrefix) {
		upstream := entities.RemoteBranchRef(remoteName, s.current)
		if branch, ok := s.cfg.Branches[s.current]; ok && branch.Remote != "" && branch.Merge != "" {
			upstream = entities.RemoteBranchRef(branch.Remote, branch.Merge.Short())
		}
		return fullName == upstream
	}
	return entities.ShortBranchName(fullName) == s.current
}

func (s *refSnapshot) existsAnywhere(short string) bool {
	if _, ok := s.local[short]; ok {
		return true
	}
	for full := range s.remote {
		if entities.ShortBranchName(full) == short {
			return true
		}
	}
	return false
}

// lookup resolves a full, display or short branch name.
func (s *refSnapshot) lookup(name string) (string, bool) {
	switch {
	case strings.HasPrefix(name, entities.LocalBranchPrefix):
		short := strings.TrimPrefix(name, entities.LocalBranchPrefix)
		_, ok := s.local[short]
		return name, ok || short == s.current
	case strings.HasPrefix(name, entities.RemoteBranchPrefix):
		_, ok := s.remote[name]
		return name, ok
	}
	if _, ok := s.local[name]; ok || name == s.current {
		return entities.LocalBranchRef(name), true
	}
	if _, ok := s.remote[entities.RemoteBranchPrefix+name]; ok {
		return entities.RemoteBranchPrefix + name, true
	}
	return "", false
}

func sortUpdates(updates []entities.RefUpdate) {
	sort.Slice(updates, func(i, j int) bool { return updates[i].Name < updates[j].Name })
}

func sortStrings(values []string) {
	sort.Strings(values)
}
