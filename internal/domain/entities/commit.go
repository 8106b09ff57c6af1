package entities

import (
	"strings"
	"time"
)

// Signature identifies who authored or committed a change.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// CommitInfo is a VCS-agnostic view of one commit.
type CommitInfo struct {
	Hash         string
	ParentHashes []string
	Author       Signature
	Committer    Signature
	Message      string
}

// ShortHash returns the abbreviated commit hash.
func (c *CommitInfo) ShortHash() string {
	if c == nil {
		return ""
	}
	if len(c.Hash) > 7 { //nolint:mnd // conventional abbreviation length
		return c.Hash[:7]
	}
	return c.Hash
}

// Subject returns the first line of the message without the manifest.
func (c *CommitInfo) Subject() string {
	if c == nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(StripManifest(c.Message)), "\n")
	return first
}

// IsMerge reports whether the commit has more than one parent.
func (c *CommitInfo) IsMerge() bool {
	return c != nil && len(c.ParentHashes) > 1
}
