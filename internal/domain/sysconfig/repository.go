package sysconfig

import "context"

type ConfigRepository interface {
	// Get returns the stored snapshot, inserting the defaults when none exists yet.
	Get(ctx context.Context) (Snapshot, error)
	Update(ctx context.Context, patch Patch) (Snapshot, error)
	// UpdateSpecialFood replaces the special dish announcement as a whole.
	UpdateSpecialFood(ctx context.Context, food SpecialFood) (Snapshot, error)

	// MarkReset and MarkAutoBlock advance the job markers to date. They return
	// ErrMarkerNotAdvanced when the marker already equals date.
	MarkReset(ctx context.Context, date string) error
	MarkAutoBlock(ctx context.Context, date string) error
}
