package degree

import (
	"github.com/pkg/errors"

	"github.com/sogrim/sogrim/core/catalog"
)

// ErrCyclicOverflow is returned when the overflow rules of a catalog form a cycle.
type ErrCyclicOverflow struct {
	Bank string
}

func (e ErrCyclicOverflow) Error() string {
	return cyclicOverflowMsg(e.Bank)
}

// TraversalOrder orders the banks so that every bank comes before the banks its credit or courses
// overflow into. Banks that are not ordered by any rule keep their catalog order.
func TraversalOrder(banks []catalog.CourseBank, credit []catalog.CreditOverflow, courses []catalog.CoursesOverflow) ([]catalog.CourseBank, error) {
	index := make(map[string]int, len(banks))
	for i, b := range banks {
		index[b.Name] = i
	}

	edges := make([][]int, len(banks))
	inDegree := make([]int, len(banks))
	addEdge := func(kind, fromName, toName string) error {
		from, ok := index[fromName]
		if !ok {
			return errors.Errorf("%s overflow from unknown bank %q", kind, fromName)
		}
		to, ok := index[toName]
		if !ok {
			return errors.Errorf("%s overflow to unknown bank %q", kind, toName)
		}
		edges[from] = append(edges[from], to)
		inDegree[to]++
		return nil
	}
	for _, o := range credit {
		if err := addEdge("credit", o.From, o.To); err != nil {
			return nil, err
		}
	}
	for _, o := range courses {
		if err := addEdge("courses", o.From, o.To); err != nil {
			return nil, err
		}
	}

	order := make([]catalog.CourseBank, 0, len(banks))
	done := make([]bool, len(banks))
	for len(order) < len(banks) {
		next := -1
		for i := range banks {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, &ErrCyclicOverflow{Bank: banks[bankInCycle(edges, done)].Name}
		}
		done[next] = true
		order = append(order, banks[next])
		for _, to := range edges[next] {
			inDegree[to]--
		}
	}
	return order, nil
}

// bankInCycle walks the unordered banks backwards until one repeats.
// Every unordered bank has an unordered predecessor, so the walk always ends on a cycle.
func bankInCycle(edges [][]int, done []bool) int {
	preds := make([][]int, len(edges))
	for from, tos := range edges {
		for _, to := range tos {
			preds[to] = append(preds[to], from)
		}
	}
	node := -1
	for i := range done {
		if !done[i] {
			node = i
			break
		}
	}
	seen := make(map[int]bool)
	for !seen[node] {
		seen[node] = true
		for _, from := range preds[node] {
			if !done[from] {
				node = from
				break
			}
		}
	}
	return node
}
