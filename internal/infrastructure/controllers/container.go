package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	constructors := []any{
		NewInitController,
		NewStatusController,
		NewTagsController,
		NewCommitController,
		NewLogController,
		NewDiffController,
		NewMergeController,
		NewPushController,
		NewFetchController,
		NewRemoteController,
		NewDeleteBranchController,
		NewResetController,
		NewWatchController,
		NewControllers,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	return nil
}

// ControllerSet is every controller the CLI exposes.
type ControllerSet struct {
	dig.In

	Init         *InitController
	Status       *StatusController
	Tags         *TagsController
	Commit       *CommitController
	Log          *LogController
	Diff         *DiffController
	Merge        *MergeController
	Push         *PushController
	Fetch        *FetchController
	Remote       *RemoteController
	DeleteBranch *DeleteBranchController
	Reset        *ResetController
	Watch        *WatchController
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(set ControllerSet) *[]entities.Controller {
	return &[]entities.Controller{
		set.Init,
		set.Status,
		set.Tags,
		set.Commit,
		set.Log,
		set.Diff,
		set.Merge,
		set.Push,
		set.Fetch,
		set.Remote,
		set.DeleteBranch,
		set.Reset,
		set.Watch,
	}
}
