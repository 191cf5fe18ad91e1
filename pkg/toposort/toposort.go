// Package toposort orders build targets so that every target comes after
// the targets it depends on.
package toposort

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrCircularDependency is returned when the input contains a dependency cycle.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrMissingDependency is returned when a required dependency is not found.
	ErrMissingDependency = errors.New("dependency not found")

	// ErrDuplicateID is returned when two items share an ID.
	ErrDuplicateID = errors.New("duplicate id")
)

// TopoSortable is an item with an ID and the IDs it depends on.
type TopoSortable interface {
	TPID() string
	DependencyTPIDs() []string
}

// Sort orders items with Kahn's algorithm. Among items whose dependencies
// are satisfied, input order is kept, so independent targets build in the
// order they were declared.
//
// A cycle yields an error wrapping ErrCircularDependency that names the
// unresolved items. Unknown dependencies wrap ErrMissingDependency unless
// ignoreMissingDeps is set, in which case they are skipped.
func Sort[T TopoSortable](items []T, ignoreMissingDeps bool) ([]T, error) {
	if len(items) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(items))
	for i, it := range items {
		id := it.TPID()
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		index[id] = i
	}

	dependents := make([][]int, len(items))
	pending := make([]int, len(items))
	for i, it := range items {
		for _, dep := range it.DependencyTPIDs() {
			if dep == it.TPID() {
				return nil, fmt.Errorf("%w: self dependency at %q", ErrCircularDependency, dep)
			}
			j, ok := index[dep]
			if !ok {
				if ignoreMissingDeps {
					continue
				}
				return nil, fmt.Errorf("dependency %q of %q not found: %w", dep, it.TPID(), ErrMissingDependency)
			}
			dependents[j] = append(dependents[j], i)
			pending[i]++
		}
	}

	var ready []int
	for i, n := range pending {
		if n == 0 {
			ready = append(ready, i)
		}
	}

	result := make([]T, 0, len(items))
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		result = append(result, items[i])
		for _, d := range dependents[i] {
			pending[d]--
			if pending[d] == 0 {
				// keep declaration order among ready items
				pos, _ := slices.BinarySearch(ready, d)
				ready = slices.Insert(ready, pos, d)
			}
		}
	}

	if len(result) != len(items) {
		var remaining []string
		for i, n := range pending {
			if n > 0 {
				remaining = append(remaining, items[i].TPID())
			}
		}
		return nil, fmt.Errorf("%w: cycle among nodes: %v", ErrCircularDependency, remaining)
	}

	return result, nil
}
