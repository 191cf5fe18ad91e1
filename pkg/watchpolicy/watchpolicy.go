// Package watchpolicy reconciles the watch options of the targets of a
// multi-target build into the single policy that governs their shared
// watch session.
package watchpolicy

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/yaklabco/stitch/pkg/buildcfg"
)

// ErrWatchConflict is matched by every *ConflictError.
var ErrWatchConflict = errors.New("watch options conflict")

// Conflicting fields.
const (
	FieldAggregateTimeout = "aggregateTimeout"
	FieldPoll             = "poll"
)

// ConflictError reports two targets whose watch options cannot be merged.
type ConflictError struct {
	Field string
	Left  string
	Right string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s values differ between configurations (%s != %s)", e.Field, e.Left, e.Right)
}

// Is makes errors.Is(err, ErrWatchConflict) hold.
func (e *ConflictError) Is(target error) bool {
	return target == ErrWatchConflict
}

// Reconcile folds the watch options of every target into one policy.
//
// Absent (nil) entries are skipped. With nothing left the zero policy is
// returned, and a lone entry is returned unchanged. Otherwise the scalar
// fields must be equal across all entries; the ignored patterns are
// concatenated in order, duplicates kept.
func Reconcile(opts []*buildcfg.WatchOptions) (buildcfg.WatchOptions, error) {
	present := lo.Compact(opts)

	switch len(present) {
	case 0:
		return buildcfg.WatchOptions{}, nil
	case 1:
		return *present[0], nil
	}

	acc := *present[0]
	for _, cur := range present[1:] {
		next, err := merge(acc, *cur)
		if err != nil {
			return buildcfg.WatchOptions{}, err
		}
		acc = next
	}
	return acc, nil
}

func merge(acc, cur buildcfg.WatchOptions) (buildcfg.WatchOptions, error) {
	if acc.AggregateTimeout != cur.AggregateTimeout {
		return buildcfg.WatchOptions{}, &ConflictError{
			Field: FieldAggregateTimeout,
			Left:  acc.AggregateTimeout.String(),
			Right: cur.AggregateTimeout.String(),
		}
	}
	if acc.Poll != cur.Poll {
		return buildcfg.WatchOptions{}, &ConflictError{
			Field: FieldPoll,
			Left:  acc.Poll.String(),
			Right: cur.Poll.String(),
		}
	}

	return buildcfg.WatchOptions{
		AggregateTimeout: cur.AggregateTimeout,
		Poll:             cur.Poll,
		Ignored:          lo.Compact(lo.Flatten([][]string{acc.Ignored, cur.Ignored})),
	}, nil
}

// FromTargets decodes the watch options of every target and reconciles
// them.
func FromTargets(cfgs []buildcfg.Options) (buildcfg.WatchOptions, error) {
	all := make([]*buildcfg.WatchOptions, 0, len(cfgs))
	for i, cfg := range cfgs {
		wo, err := cfg.WatchOptions()
		if err != nil {
			return buildcfg.WatchOptions{}, fmt.Errorf("target %d: %w", i, err)
		}
		all = append(all, wo)
	}
	return Reconcile(all)
}
