package entities

import "errors"

var (
	// ErrNoHead is returned when an operation needs a commit but HEAD is unborn.
	ErrNoHead = errors.New("repository has no commits")
	// ErrNothingToAmend is returned when amending without a previous commit.
	ErrNothingToAmend = errors.New("there is no commit to amend")
	// ErrUncommittedChanges is returned when the working copy must be clean.
	ErrUncommittedChanges = errors.New("working copy has uncommitted changes")
	// ErrBranchNotFound is returned when a branch ref cannot be resolved.
	ErrBranchNotFound = errors.New("branch not found")
	// ErrModelNotFound is returned when the model document is missing.
	ErrModelNotFound = errors.New("model document not found")
	// ErrIntegrity is returned when a model fails its consistency checks.
	ErrIntegrity = errors.New("model integrity check failed")
	// ErrNoRemote is returned for network operations without a configured remote.
	ErrNoRemote = errors.New("no remote configured")
)
