package entities

// MergeResult is the terminal outcome reported by the merge engine.
type MergeResult int

const (
	MergeResultMergedOK MergeResult = iota
	MergeResultAlreadyUpToDate
	MergeResultMergedWithConflictsResolved
	MergeResultCancelled
)

func (r MergeResult) String() string {
	switch r {
	case MergeResultMergedOK:
		return "merged"
	case MergeResultAlreadyUpToDate:
		return "already up to date"
	case MergeResultMergedWithConflictsResolved:
		return "merged with conflicts resolved"
	case MergeResultCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MergeState is a step of the merge engine state machine.
type MergeState int

const (
	MergeStateStart MergeState = iota
	MergeStateFastForwardCheck
	MergeStateFullMerge
	MergeStateIntegrityCheck
	MergeStateCommit
	MergeStateDone
	MergeStateCancelled
)

func (s MergeState) String() string {
	return [...]string{
		"start", "fast-forward-check", "full-merge", "integrity-check", "commit", "done", "cancelled",
	}[s]
}

// MergeReport carries the result together with what happened on the way.
type MergeReport struct {
	Result      MergeResult
	FastForward bool
	Conflicts   int
	Applied     int
	Reason      string
	Commit      *CommitInfo
	States      []MergeState
}
