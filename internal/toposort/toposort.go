// Package toposort orders indexed nodes so that every node comes after the
// nodes it depends on.
package toposort

import (
	"errors"
	"fmt"
	"sort"
)

var ErrCycle = errors.New("cycle detected")

// CycleError lists the nodes that could not be ordered because they sit on,
// or depend on, a cycle.
type CycleError struct {
	Nodes []int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s among nodes %v", ErrCycle, e.Nodes)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Layers returns node indices grouped into layers. Layer 0 holds the nodes
// without dependencies; every later layer holds the nodes whose dependencies
// all sit in earlier layers. Indices inside a layer are ascending.
//
// depsFn(i) yields indices that must be executed before i. Duplicate
// dependencies are ignored.
func Layers(n int, depsFn func(i int) []int) ([][]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		seen := make(map[int]struct{})

		for _, d := range depsFn(i) {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			if _, dup := seen[d]; dup {
				continue
			}

			seen[d] = struct{}{}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	var layers [][]int

	placed := 0

	for len(ready) > 0 {
		layers = append(layers, ready)
		placed += len(ready)

		var next []int

		for _, i := range ready {
			for _, j := range out[i] {
				indeg[j]--
				if indeg[j] == 0 {
					next = append(next, j)
				}
			}
		}

		// Deterministic traversal.
		sort.Ints(next)
		ready = next
	}

	if placed != n {
		var stuck []int

		for i := range n {
			if indeg[i] > 0 {
				stuck = append(stuck, i)
			}
		}

		return nil, &CycleError{Nodes: stuck}
	}

	return layers, nil
}

// Sort returns indices in execution order: the concatenation of Layers.
func Sort(n int, depsFn func(i int) []int) ([]int, error) {
	layers, err := Layers(n, depsFn)
	if err != nil {
		return nil, err
	}

	order := make([]int, 0, n)
	for _, layer := range layers {
		order = append(order, layer...)
	}

	return order, nil
}
