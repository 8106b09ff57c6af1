//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/modelgit/internal/domain/commands"
	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// StubCommitCommand is a stub implementation of commands.Commit.
type StubCommitCommand struct {
	ExecuteCallCount int
	Result           *entities.CommitInfo
	ExecuteErr       error
	LastOpts         commands.CommitOptions
}

var _ commands.Commit = (*StubCommitCommand)(nil)

func (s *StubCommitCommand) Execute(opts commands.CommitOptions) (*entities.CommitInfo, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Result, s.ExecuteErr
}

// StubMergeCommand is a stub implementation of commands.Merge.
type StubMergeCommand struct {
	ExecuteCallCount int
	Report           *entities.MergeReport
	ExecuteErr       error
	LastOpts         commands.MergeOptions
}

var _ commands.Merge = (*StubMergeCommand)(nil)

func (s *StubMergeCommand) Execute(opts commands.MergeOptions) (*entities.MergeReport, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Report, s.ExecuteErr
}

// StubStatusCommand is a stub implementation of commands.Status.
type StubStatusCommand struct {
	ExecuteCallCount int
	Report           *commands.StatusReport
	ExecuteErr       error
	TagList          []*entities.TagInfo
	LastRepo         entities.Repository
}

var _ commands.Status = (*StubStatusCommand)(nil)

func (s *StubStatusCommand) Execute(repo entities.Repository) (*commands.StatusReport, error) {
	s.ExecuteCallCount++
	s.LastRepo = repo
	return s.Report, s.ExecuteErr
}

func (s *StubStatusCommand) Tags(repo entities.Repository) ([]*entities.TagInfo, error) {
	s.LastRepo = repo
	return s.TagList, s.ExecuteErr
}

// StubLogCommand is a stub implementation of commands.Log.
type StubLogCommand struct {
	Entries    []*commands.LogEntry
	ExecuteErr error
	LastOpts   commands.LogOptions
}

var _ commands.Log = (*StubLogCommand)(nil)

func (s *StubLogCommand) Execute(opts commands.LogOptions) ([]*commands.LogEntry, error) {
	s.LastOpts = opts
	return s.Entries, s.ExecuteErr
}
