package entities

// TagAnnotation is present only for annotated tags.
type TagAnnotation struct {
	Hash    string
	Tagger  Signature
	Message string
}

// TagInfo describes a tag and the commit it resolves to.
type TagInfo struct {
	FullName   string
	ShortName  string
	RefHash    string
	Commit     *CommitInfo
	Annotation *TagAnnotation
	IsOrphaned bool
}

// IsAnnotated reports whether the tag points at a tag object.
func (t *TagInfo) IsAnnotated() bool { return t.Annotation != nil }
