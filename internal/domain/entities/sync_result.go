package entities

// Credentials are handed to network operations. Either user/password (HTTP)
// or a private key file (SSH) is used depending on the remote URL.
type Credentials struct {
	Username       string
	Password       string
	PrivateKeyFile string
}

// IsEmpty reports whether no credential material is present.
func (c *Credentials) IsEmpty() bool {
	return c == nil || (c.Username == "" && c.Password == "" && c.PrivateKeyFile == "")
}

// RefUpdate describes one ref moved by a push or fetch.
type RefUpdate struct {
	Name    string
	OldHash string
	NewHash string
	Deleted bool
}

// PushResult reports the outcome of a push.
type PushResult struct {
	Remote   string
	UpToDate bool
	Updates  []RefUpdate
}

// FetchResult reports the outcome of a fetch.
type FetchResult struct {
	Remote   string
	UpToDate bool
	Updates  []RefUpdate
	Pruned   []string
}

// StageResult is the outcome of staging a merge in the working copy.
type StageResult int

const (
	// StageMerged means a combined working tree was staged and awaits a commit.
	StageMerged StageResult = iota
	// StageAlreadyUpToDate means the other side is already contained in HEAD.
	StageAlreadyUpToDate
)
