package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register helpers and command constructors
	constructors := []any{
		NewSnapshotLoader,
		NewManifestBuilder,
		NewInitCommand,
		NewStatusCommand,
		NewCommitCommand,
		NewLogCommand,
		NewDiffCommand,
		NewMergeCommand,
		NewSyncCommand,
		NewResetCommand,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	bindings := []any{
		func(impl *InitCommand) Init { return impl },
		func(impl *StatusCommand) Status { return impl },
		func(impl *CommitCommand) Commit { return impl },
		func(impl *LogCommand) Log { return impl },
		func(impl *DiffCommand) Diff { return impl },
		func(impl *MergeCommand) Merge { return impl },
		func(impl *SyncCommand) Sync { return impl },
		func(impl *ResetCommand) Reset { return impl },
	}
	for _, binding := range bindings {
		if err := container.Provide(binding); err != nil {
			return err
		}
	}

	return nil
}
