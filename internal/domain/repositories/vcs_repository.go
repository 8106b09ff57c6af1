package repositories

import (
	"context"
	"io"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// VCSRepository is an open handle on one repository's version control state.
// Every mutating operation leaves refs consistent when it fails, but nothing
// is transactional across calls: callers sequence operations and handle
// partial completion. No operation retries on its own.
type VCSRepository interface {
	// Repository returns the handle the VCS state belongs to.
	Repository() entities.Repository
	Close() error

	// CommitChanges stages every change of the working copy and commits it.
	// It returns nil when there is nothing to commit and amend is false.
	CommitChanges(message string, amend bool) (*entities.CommitInfo, error)
	HasChangesToCommit() (bool, error)

	Push(ctx context.Context, creds *entities.Credentials, progress io.Writer) (*entities.PushResult, error)
	Fetch(ctx context.Context, creds *entities.Credentials, progress io.Writer, prune bool) (*entities.FetchResult, error)
	// SetRemoteURL creates or updates the remote, an empty URL removes it.
	SetRemoteURL(url string) error
	RemoteURL() (string, error)
	DeleteLocalBranch(name string) error
	DeleteRemoteBranch(ctx context.Context, name string, creds *entities.Credentials) error

	// ResetToRef discards working tree edits and untracked files.
	ResetToRef(ref string) error

	IsAtHead(rev string) (bool, error)
	CommitCount(rev string) (int, error)
	ParentCount(rev string) (int, error)
	// MergeBase returns the nearest common ancestor, empty when there is none.
	MergeBase(rev1, rev2 string) (string, error)
	// IsMergedInto reports whether rev is reachable from into.
	IsMergedInto(rev, into string) (bool, error)
	// ExtractCommit writes the full tree of rev into dir.
	ExtractCommit(rev, dir string) error
	// FileContents reads one file at rev. A missing file returns fs.ErrNotExist.
	FileContents(rev, path string) ([]byte, error)

	HeadCommit() (*entities.CommitInfo, error)
	Commit(rev string) (*entities.CommitInfo, error)
	CurrentBranch() (string, error)
	Log(rev string, limit int) ([]*entities.CommitInfo, error)

	// StageMerge prepares a combined working tree without committing.
	StageMerge(rev string) (entities.StageResult, error)
	// CommitMerge commits the staged merge with HEAD and the merged rev as parents.
	CommitMerge(message string) (*entities.CommitInfo, error)
	AbortMerge() error
	IsMerging() bool

	BranchStatus() (*entities.BranchStatus, error)
	Branch(name string, full bool) (*entities.BranchInfo, error)
	RefreshBranch(info *entities.BranchInfo) error
	Tags() ([]*entities.TagInfo, error)
}

// VCSFactory opens VCS handles. It lets commands open the repositories they
// are asked to work on without knowing the engine.
type VCSFactory interface {
	Open(repo entities.Repository) (VCSRepository, error)
	Init(repo entities.Repository, model *entities.Model) (VCSRepository, error)
}
