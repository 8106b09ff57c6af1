package entities

import "strings"

const (
	// LocalBranchPrefix is the namespace of local branches.
	LocalBranchPrefix = "refs/heads/"
	// RemoteBranchPrefix is the namespace of remote-tracking branches.
	RemoteBranchPrefix = "refs/remotes/"
	// TagPrefix is the namespace of tags.
	TagPrefix = "refs/tags/"
	// DefaultRemoteName is used when the settings do not name a remote.
	DefaultRemoteName = "origin"
	// DefaultTrunkName is the designated primary branch.
	DefaultTrunkName = "main"
	// LegacyTrunkName is recognized as primary only when it is the real default branch.
	LegacyTrunkName = "master"
)

// BranchInfo is an immutable snapshot of a single ref's status. Light
// snapshots only carry identity and IsRefAtHead, full snapshots carry every field.
type BranchInfo struct {
	FullName  string
	ShortName string
	Remote    bool
	Symbolic  bool
	Full      bool

	HasLocalRef     bool
	HasRemoteRef    bool
	IsCurrent       bool
	IsRefAtHead     bool
	IsPrimaryBranch bool
	IsMerged        bool
	IsRemoteDeleted bool

	HasUnpushedCommits bool
	HasRemoteCommits   bool
	Ahead              int
	Behind             int

	LatestCommit *CommitInfo
}

// LocalBranchRef returns the full local ref name for a short branch name.
func LocalBranchRef(short string) string {
	return LocalBranchPrefix + short
}

// RemoteBranchRef returns the full remote-tracking ref name for a short branch name.
func RemoteBranchRef(remote, short string) string {
	return RemoteBranchPrefix + remote + "/" + short
}

// ShortBranchName strips the local or remote namespace from a full ref name.
// Remote refs also lose their remote name, so that local and remote pair up.
func ShortBranchName(fullName string) string {
	switch {
	case strings.HasPrefix(fullName, LocalBranchPrefix):
		return strings.TrimPrefix(fullName, LocalBranchPrefix)
	case strings.HasPrefix(fullName, RemoteBranchPrefix):
		rest := strings.TrimPrefix(fullName, RemoteBranchPrefix)
		if _, name, ok := strings.Cut(rest, "/"); ok {
			return name
		}
		return rest
	case strings.HasPrefix(fullName, TagPrefix):
		return strings.TrimPrefix(fullName, TagPrefix)
	default:
		return fullName
	}
}

// DisplayName is the name shown to users: remote branches keep their remote prefix.
func (b *BranchInfo) DisplayName() string {
	if b.Remote {
		return strings.TrimPrefix(b.FullName, RemoteBranchPrefix)
	}
	return b.ShortName
}

// IsLocal reports whether the snapshot describes a local branch.
func (b *BranchInfo) IsLocal() bool { return !b.Remote }

// HasCommits reports whether the ref resolves to a commit.
func (b *BranchInfo) HasCommits() bool { return b.LatestCommit != nil }

// BranchStatus is the catalogue of every local and remote branch at one point in time.
type BranchStatus struct {
	Branches            []*BranchInfo
	CurrentLocalBranch  *BranchInfo
	CurrentRemoteBranch *BranchInfo
}

// LocalBranches returns the local branches in catalogue order.
func (s *BranchStatus) LocalBranches() []*BranchInfo {
	return s.filter(func(b *BranchInfo) bool { return !b.Remote })
}

// RemoteBranches returns the remote-tracking branches in catalogue order.
func (s *BranchStatus) RemoteBranches() []*BranchInfo {
	return s.filter(func(b *BranchInfo) bool { return b.Remote })
}

// Find returns the branch with the given full or display name.
func (s *BranchStatus) Find(name string) *BranchInfo {
	for _, b := range s.Branches {
		if b.FullName == name || b.DisplayName() == name {
			return b
		}
	}
	return nil
}

func (s *BranchStatus) filter(keep func(*BranchInfo) bool) []*BranchInfo {
	var out []*BranchInfo
	for _, b := range s.Branches {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
