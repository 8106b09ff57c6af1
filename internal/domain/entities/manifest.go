package entities

import (
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

const (
	manifestBeginMarker = "[model-changes]"
	manifestEndMarker   = "[/model-changes]"
	manifestSeparator   = "\n\n"

	// ManifestVersion is written into every new manifest. Readers accept any
	// manifest whose major version is not newer than this one.
	ManifestVersion = "v1.0.0"
)

// ChangeKind classifies what happened to an object in a commit.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeModified ChangeKind = "modified"
	ChangeMoved    ChangeKind = "moved"
)

// Valid reports whether the kind is one of the known change kinds.
func (k ChangeKind) Valid() bool {
	switch k {
	case ChangeAdded, ChangeDeleted, ChangeModified, ChangeMoved:
		return true
	default:
		return false
	}
}

// ObjectChange records one change of one model object.
type ObjectChange struct {
	ObjectID string     `yaml:"id"`
	Kind     ChangeKind `yaml:"kind"`
}

// CommitManifest is the machine readable ledger embedded in a commit message.
type CommitManifest struct {
	Version string         `yaml:"version"`
	Amended bool           `yaml:"amended,omitempty"`
	Changes []ObjectChange `yaml:"changes"`
}

// NewCommitManifest reduces the changes and wraps them in a manifest.
// It returns nil when nothing remains after reduction.
func NewCommitManifest(changes []ObjectChange, amended bool) *CommitManifest {
	reduced := ReduceChanges(changes)
	if len(reduced) == 0 {
		return nil
	}
	return &CommitManifest{Version: ManifestVersion, Amended: amended, Changes: reduced}
}

// ChangesFor returns the entries recorded for an object.
func (m *CommitManifest) ChangesFor(id string) []ChangeKind {
	if m == nil {
		return nil
	}
	var kinds []ChangeKind
	for _, c := range m.Changes {
		if c.ObjectID == id {
			kinds = append(kinds, c.Kind)
		}
	}
	return kinds
}

// IDs returns the distinct object ids of the manifest in order.
func (m *CommitManifest) IDs() []string {
	if m == nil {
		return nil
	}
	seen := map[string]bool{}
	var ids []string
	for _, c := range m.Changes {
		if !seen[c.ObjectID] {
			seen[c.ObjectID] = true
			ids = append(ids, c.ObjectID)
		}
	}
	return ids
}

// ReduceChanges removes redundant entries:
//   - added and deleted for the same id cancel each other out,
//   - otherwise added or deleted subsume modified and moved for that id.
//
// Duplicates are dropped and the first-seen order of ids is preserved.
// Reducing an already reduced set returns the same set.
func ReduceChanges(changes []ObjectChange) []ObjectChange {
	kinds := map[string]map[ChangeKind]bool{}
	var order []string
	for _, c := range changes {
		if c.ObjectID == "" || !c.Kind.Valid() {
			continue
		}
		if kinds[c.ObjectID] == nil {
			kinds[c.ObjectID] = map[ChangeKind]bool{}
			order = append(order, c.ObjectID)
		}
		kinds[c.ObjectID][c.Kind] = true
	}

	var out []ObjectChange
	for _, id := range order {
		set := kinds[id]
		switch {
		case set[ChangeAdded] && set[ChangeDeleted]:
			continue
		case set[ChangeAdded]:
			out = append(out, ObjectChange{ObjectID: id, Kind: ChangeAdded})
		case set[ChangeDeleted]:
			out = append(out, ObjectChange{ObjectID: id, Kind: ChangeDeleted})
		default:
			if set[ChangeModified] {
				out = append(out, ObjectChange{ObjectID: id, Kind: ChangeModified})
			}
			if set[ChangeMoved] {
				out = append(out, ObjectChange{ObjectID: id, Kind: ChangeMoved})
			}
		}
	}
	return out
}

// EncodeManifest renders the manifest block, without the separating blank line.
// A nil or empty manifest encodes to an empty string.
func EncodeManifest(m *CommitManifest) (string, error) {
	if m == nil || len(m.Changes) == 0 {
		return "", nil
	}
	doc := *m
	if doc.Version == "" {
		doc.Version = ManifestVersion
	}
	body, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(manifestBeginMarker)
	sb.WriteString("\n")
	sb.Write(body)
	sb.WriteString(manifestEndMarker)
	sb.WriteString("\n")
	return sb.String(), nil
}

// AppendManifest appends the manifest block to a commit message after a blank line.
func AppendManifest(message string, m *CommitManifest) (string, error) {
	block, err := EncodeManifest(m)
	if err != nil || block == "" {
		return message, err
	}
	trimmed := strings.TrimRight(message, "\n")
	if trimmed == "" {
		return block, nil
	}
	return trimmed + manifestSeparator + block, nil
}

// DecodeManifest extracts the trailing manifest of a commit message. Only the
// last block is considered, and only when nothing but whitespace follows it.
// A missing, malformed or too new block yields nil.
func DecodeManifest(message string) *CommitManifest {
	block, ok := locateManifest(message)
	if !ok {
		return nil
	}
	var m CommitManifest
	if err := yaml.Unmarshal([]byte(block.body), &m); err != nil {
		logger.Warnf("[manifest] Ignoring malformed manifest: %v", err)
		return nil
	}
	if !semver.IsValid(m.Version) {
		logger.Warnf("[manifest] Ignoring manifest with invalid version %q", m.Version)
		return nil
	}
	if semver.Compare(semver.Major(m.Version), semver.Major(ManifestVersion)) > 0 {
		logger.Warnf("[manifest] Ignoring manifest version %s newer than supported %s", m.Version, ManifestVersion)
		return nil
	}
	valid := m.Changes[:0]
	for _, c := range m.Changes {
		if c.ObjectID == "" || !c.Kind.Valid() {
			logger.Debugf("[manifest] Skipping unknown entry %q/%q", c.ObjectID, c.Kind)
			continue
		}
		valid = append(valid, c)
	}
	m.Changes = valid
	return &m
}

// ContainsChange reports whether the message's manifest lists any entry for the id.
func ContainsChange(message, id string) bool {
	return len(DecodeManifest(message).ChangesFor(id)) > 0
}

// StripManifest removes the trailing manifest block and its separating blank line.
func StripManifest(message string) string {
	block, ok := locateManifest(message)
	if !ok {
		return message
	}
	head := message[:block.start]
	return strings.TrimSuffix(strings.TrimSuffix(head, "\n"), "\n")
}

type manifestBlock struct {
	start int
	body  string
}

// locateManifest finds the last begin marker that starts a line and checks
// that its block closes and is the trailing content of the message.
func locateManifest(message string) (manifestBlock, bool) {
	searchEnd := len(message)
	for searchEnd > 0 {
		start := strings.LastIndex(message[:searchEnd], manifestBeginMarker)
		if start < 0 {
			return manifestBlock{}, false
		}
		if start > 0 && message[start-1] != '\n' {
			searchEnd = start
			continue
		}
		rest := message[start+len(manifestBeginMarker):]
		if !strings.HasPrefix(rest, "\n") {
			searchEnd = start
			continue
		}
		end := strings.Index(rest, "\n"+manifestEndMarker)
		if end < 0 {
			return manifestBlock{}, false
		}
		tail := rest[end+1+len(manifestEndMarker):]
		if strings.TrimSpace(tail) != "" {
			return manifestBlock{}, false
		}
		return manifestBlock{start: start, body: rest[1 : end+1]}, true
	}
	return manifestBlock{}, false
}
