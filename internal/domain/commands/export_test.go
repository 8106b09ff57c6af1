package commands

// MergeMessage exports mergeMessage for testing.
var MergeMessage = mergeMessage //nolint:gochecknoglobals // test export
