package comparison

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Describe renders the grouped changes of a comparison as readable text,
// one header per owner followed by its diffs. Multi-line values are shown
// as unified diffs.
func (c *Comparison) Describe() (string, error) {
	var b strings.Builder
	for _, change := range c.ChangedObjects() {
		fmt.Fprintf(&b, "%s %q (%s)\n", change.Object.Kind, change.Object.Label(), change.Object.ID)
		for _, d := range change.Diffs {
			if err := c.describeDiff(&b, d); err != nil {
				return "", err
			}
		}
	}
	return b.String(), nil
}

func (c *Comparison) describeDiff(b *strings.Builder, d *Diff) error {
	subject := d.ObjectID
	if d.ObjectID != "" {
		if obj := c.FindRight(d.ObjectID); obj != nil {
			subject = obj.Label()
		} else if obj := c.FindLeft(d.ObjectID); obj != nil {
			subject = obj.Label()
		}
	}
	switch d.Kind {
	case DiffAdd:
		fmt.Fprintf(b, "  + %s %s\n", d.ObjectKind, subject)
	case DiffDelete:
		fmt.Fprintf(b, "  - %s %s\n", d.ObjectKind, subject)
	case DiffMove:
		fmt.Fprintf(b, "  > %s %s moved from %s to %s\n", d.ObjectKind, subject, d.OldParentID, d.ParentID)
	case DiffChange:
		if !strings.Contains(d.OldValue, "\n") && !strings.Contains(d.NewValue, "\n") {
			fmt.Fprintf(b, "  ~ %s.%s: %q -> %q\n", subject, d.Feature, d.OldValue, d.NewValue)
			return nil
		}
		fmt.Fprintf(b, "  ~ %s.%s:\n", subject, d.Feature)
		text, err := RenderValueDiff(d.Feature, d.OldValue, d.NewValue)
		if err != nil {
			return err
		}
		for _, line := range difflib.SplitLines(text) {
			if line == "\n" {
				continue
			}
			b.WriteString("    ")
			b.WriteString(line)
		}
	}
	return nil
}

// RenderValueDiff returns the unified diff between two feature values.
func RenderValueDiff(feature, oldValue, newValue string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldValue),
		B:        difflib.SplitLines(newValue),
		FromFile: "a/" + feature,
		ToFile:   "b/" + feature,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("failed to render diff of %s: %w", feature, err)
	}
	return text, nil
}
