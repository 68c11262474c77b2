package record

import (
	"fmt"
	"strings"

	"recordcast/internal/toposort"
)

// schedule returns field indices in execution order.
//
// Without declared dependencies the declaration order is used as is.
// Otherwise fields are grouped in layers: a field lands in the first layer
// after all of its dependencies, and fields sharing a layer keep their
// declaration order.
func schedule(fields []Field, index map[string]int) ([]int, error) {
	hasDeps := false

	for _, f := range fields {
		if len(f.DependsOn) > 0 {
			hasDeps = true
			break
		}
	}

	if !hasDeps {
		order := make([]int, len(fields))
		for i := range order {
			order[i] = i
		}

		return order, nil
	}

	order, err := toposort.Sort(len(fields), func(i int) []int {
		deps := make([]int, 0, len(fields[i].DependsOn))
		for _, name := range fields[i].DependsOn {
			deps = append(deps, index[name])
		}

		return deps
	})
	if err != nil {
		if ce, ok := err.(*toposort.CycleError); ok {
			names := make([]string, len(ce.Nodes))
			for i, n := range ce.Nodes {
				names[i] = fields[n].Name
			}

			return nil, fmt.Errorf("%w involving fields %s", ErrDependencyCycle, strings.Join(names, ", "))
		}

		return nil, err
	}

	return order, nil
}
