package commands

import (
	"github.com/rios0rios0/modelgit/internal/domain/entities"
	"github.com/rios0rios0/modelgit/internal/domain/repositories"
)

// Log is the interface for reading commit history.
type Log interface {
	Execute(opts LogOptions) ([]*LogEntry, error)
}

// LogOptions holds the inputs of a history query.
type LogOptions struct {
	Repository entities.Repository
	Revision   string
	Limit      int
	// ObjectID restricts the history to commits whose manifest lists the object.
	ObjectID string
}

// LogEntry pairs a commit with its decoded manifest, which may be nil.
type LogEntry struct {
	Commit   *entities.CommitInfo
	Manifest *entities.CommitManifest
}

// LogCommand lists commits newest first.
type LogCommand struct {
	factory repositories.VCSFactory
}

// NewLogCommand creates a new LogCommand.
func NewLogCommand(factory repositories.VCSFactory) *LogCommand {
	return &LogCommand{factory: factory}
}

// Execute walks the history of the revision. The limit applies after filtering.
func (it *LogCommand) Execute(opts LogOptions) ([]*LogEntry, error) {
	vcs, err := it.factory.Open(opts.Repository)
	if err != nil {
		return nil, err
	}
	defer closeVCS(vcs)

	rev := opts.Revision
	if rev == "" {
		rev = "HEAD"
	}
	walkLimit := opts.Limit
	if opts.ObjectID != "" {
		walkLimit = 0
	}
	commits, err := vcs.Log(rev, walkLimit)
	if err != nil {
		return nil, err
	}
	if opts.ObjectID != "" {
		commits = FilterByObject(commits, opts.ObjectID)
	}
	if opts.Limit > 0 && len(commits) > opts.Limit {
		commits = commits[:opts.Limit]
	}

	entries := make([]*LogEntry, 0, len(commits))
	for _, c := range commits {
		entries = append(entries, &LogEntry{Commit: c, Manifest: entities.DecodeManifest(c.Message)})
	}
	return entries, nil
}

// FilterByObject keeps the commits whose manifest lists the object.
func FilterByObject(commits []*entities.CommitInfo, objectID string) []*entities.CommitInfo {
	var out []*entities.CommitInfo
	for _, c := range commits {
		if entities.ContainsChange(c.Message, objectID) {
			out = append(out, c)
		}
	}
	return out
}
