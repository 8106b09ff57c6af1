//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"io"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// SpyVCSRepository implements repositories.VCSRepository as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyVCSRepository struct {
	// --- identity ---
	Repo       entities.Repository
	CloseCalls int

	// --- CommitChanges / HasChangesToCommit ---
	Dirty         bool
	DirtyErr      error
	CommitResult  *entities.CommitInfo
	CommitErr     error
	CommitMessage string
	CommitAmend   bool

	// --- Push / Fetch / remotes ---
	PushResult    *entities.PushResult
	PushErr       error
	PushCreds     *entities.Credentials
	FetchResult   *entities.FetchResult
	FetchErr      error
	FetchPrune    bool
	URL           string
	SetURLErr     error
	DeletedLocal  []string
	DeletedRemote []string
	DeleteErr     error

	// --- ResetToRef ---
	ResetRefs []string
	ResetErr  error

	// --- history ---
	Head        *entities.CommitInfo
	HeadErr     error
	Commits     map[string]*entities.CommitInfo
	Merged      map[[2]string]bool
	Base        string
	LogResult   []*entities.CommitInfo
	LogLimit    int
	CurrentName string
	Files       map[string][]byte
	ExtractFunc func(rev, dir string) error

	// --- merge ---
	StageResult    entities.StageResult
	StageErr       error
	StagedRevs     []string
	MergeCommit    *entities.CommitInfo
	MergeErr       error
	MergeMessages  []string
	AbortCalls     int
	MergingInState bool

	// --- status ---
	Status    *entities.BranchStatus
	StatusErr error
	Branches  map[string]*entities.BranchInfo
	TagList   []*entities.TagInfo
}

var _ repositories.VCSRepository = (*SpyVCSRepository)(nil)

func (s *SpyVCSRepository) Repository() entities.Repository { return s.Repo }

func (s *SpyVCSRepository) Close() error {
	s.CloseCalls++
	return nil
}

func (s *SpyVCSRepository) CommitChanges(message string, amend bool) (*entities.CommitInfo, error) {
	s.CommitMessage = message
	s.CommitAmend = amend
	return s.CommitResult, s.CommitErr
}

func (s *SpyVCSRepository) HasChangesToCommit() (bool, error) { return s.Dirty, s.DirtyErr }

func (s *SpyVCSRepository) Push(
	_ context.Context, creds *entities.Credentials, _ io.Writer,
) (*entities.PushResult, error) {
	s.PushCreds = creds
	return s.PushResult, s.PushErr
}

func (s *SpyVCSRepository) Fetch(
	_ context.Context, _ *entities.Credentials, _ io.Writer, prune bool,
) (*entities.FetchResult, error) {
	s.FetchPrune = prune
	return s.FetchResult, s.FetchErr
}

func (s *SpyVCSRepository) SetRemoteURL(url string) error {
	s.URL = url
	return s.SetURLErr
}

func (s *SpyVCSRepository) RemoteURL() (string, error) { return s.URL, nil }

func (s *SpyVCSRepository) DeleteLocalBranch(name string) error {
	s.DeletedLocal = append(s.DeletedLocal, name)
	return s.DeleteErr
}

func (s *SpyVCSRepository) DeleteRemoteBranch(_ context.Context, name string, _ *entities.Credentials) error {
	s.DeletedRemote = append(s.DeletedRemote, name)
	return s.DeleteErr
}

func (s *SpyVCSRepository) ResetToRef(ref string) error {
	s.ResetRefs = append(s.ResetRefs, ref)
	return s.ResetErr
}

func (s *SpyVCSRepository) IsAtHead(rev string) (bool, error) {
	return s.Head != nil && s.Commits[rev] != nil && s.Commits[rev].Hash == s.Head.Hash, nil
}

func (s *SpyVCSRepository) CommitCount(string) (int, error) { return len(s.LogResult), nil }

func (s *SpyVCSRepository) ParentCount(rev string) (int, error) {
	if c := s.Commits[rev]; c != nil {
		return len(c.ParentHashes), nil
	}
	return 0, nil
}

func (s *SpyVCSRepository) MergeBase(string, string) (string, error) { return s.Base, nil }

func (s *SpyVCSRepository) IsMergedInto(rev, into string) (bool, error) {
	if rev == into {
		return true, nil
	}
	return s.Merged[[2]string{rev, into}], nil
}

func (s *SpyVCSRepository) ExtractCommit(rev, dir string) error {
	if s.ExtractFunc == nil {
		return nil
	}
	return s.ExtractFunc(rev, dir)
}

func (s *SpyVCSRepository) FileContents(_, path string) ([]byte, error) {
	if data, ok := s.Files[path]; ok {
		return data, nil
	}
	return nil, errNotExist(path)
}

func (s *SpyVCSRepository) HeadCommit() (*entities.CommitInfo, error) {
	if s.HeadErr != nil {
		return nil, s.HeadErr
	}
	if s.Head == nil {
		return nil, entities.ErrNoHead
	}
	return s.Head, nil
}

func (s *SpyVCSRepository) Commit(rev string) (*entities.CommitInfo, error) {
	if c, ok := s.Commits[rev]; ok {
		return c, nil
	}
	return nil, entities.ErrBranchNotFound
}

func (s *SpyVCSRepository) CurrentBranch() (string, error) { return s.CurrentName, nil }

func (s *SpyVCSRepository) Log(_ string, limit int) ([]*entities.CommitInfo, error) {
	s.LogLimit = limit
	if limit > 0 && len(s.LogResult) > limit {
		return s.LogResult[:limit], nil
	}
	return s.LogResult, nil
}

func (s *SpyVCSRepository) StageMerge(rev string) (entities.StageResult, error) {
	s.StagedRevs = append(s.StagedRevs, rev)
	return s.StageResult, s.StageErr
}

func (s *SpyVCSRepository) CommitMerge(message string) (*entities.CommitInfo, error) {
	s.MergeMessages = append(s.MergeMessages, message)
	return s.MergeCommit, s.MergeErr
}

func (s *SpyVCSRepository) AbortMerge() error {
	s.AbortCalls++
	return nil
}

func (s *SpyVCSRepository) IsMerging() bool { return s.MergingInState }

func (s *SpyVCSRepository) BranchStatus() (*entities.BranchStatus, error) { return s.Status, s.StatusErr }

func (s *SpyVCSRepository) Branch(name string, _ bool) (*entities.BranchInfo, error) {
	if b, ok := s.Branches[name]; ok {
		return b, nil
	}
	return nil, entities.ErrBranchNotFound
}

func (s *SpyVCSRepository) RefreshBranch(*entities.BranchInfo) error { return nil }

func (s *SpyVCSRepository) Tags() ([]*entities.TagInfo, error) { return s.TagList, nil }

// StubVCSFactory hands out a fixed repository.
type StubVCSFactory struct {
	VCS       *SpyVCSRepository
	OpenErr   error
	InitErr   error
	OpenCalls int
	InitModel *entities.Model
}

var _ repositories.VCSFactory = (*StubVCSFactory)(nil)

func (f *StubVCSFactory) Open(repo entities.Repository) (repositories.VCSRepository, error) {
	f.OpenCalls++
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	f.VCS.Repo = repo
	return f.VCS, nil
}

func (f *StubVCSFactory) Init(repo entities.Repository, model *entities.Model) (repositories.VCSRepository, error) {
	f.InitModel = model
	if f.InitErr != nil {
		return nil, f.InitErr
	}
	f.VCS.Repo = repo
	return f.VCS, nil
}
