package pathfind

import (
	"context"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/beka-birhanu/vinom-pathfinder/route"
)

// Enumerator produces every simple path between two nodes of a graph.
// Returned routes are not ordered; disconnected nodes yield an empty result
// and a nil error.
type Enumerator interface {
	Enumerate(ctx context.Context, g *Graph, from, to lake.Coordinate) ([]route.Route, error)
}

// ctxCheckInterval is how many expansions happen between cancellation checks.
const ctxCheckInterval = 1024

// DFSEnumerator enumerates simple paths by iterative backtracking depth-first
// search, keeping a visited set for the path currently on the stack.
type DFSEnumerator struct {
	// Limit caps the number of routes returned. Zero means unlimited.
	Limit int
}

// frame is one node on the search stack and the index of the next neighbour
// to try from it.
type frame struct {
	node lake.Coordinate
	next int
}

// Enumerate implements Enumerator.
func (e DFSEnumerator) Enumerate(ctx context.Context, g *Graph, from, to lake.Coordinate) ([]route.Route, error) {
	if !g.Has(from) || !g.Has(to) {
		return nil, nil
	}
	if from == to {
		return []route.Route{{from}}, nil
	}

	var routes []route.Route
	stack := []frame{{node: from}}
	path := []lake.Coordinate{from}
	onPath := make(map[lake.Coordinate]struct{}, len(g.Nodes()))
	onPath[from] = struct{}{}

	for steps := 0; len(stack) > 0; steps++ {
		if steps%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		top := &stack[len(stack)-1]
		nbrs := g.Neighbors(top.node)
		if top.next >= len(nbrs) {
			delete(onPath, top.node)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
			continue
		}

		n := nbrs[top.next]
		top.next++
		if _, seen := onPath[n]; seen {
			continue
		}

		if n == to {
			found := make(route.Route, len(path)+1)
			copy(found, path)
			found[len(path)] = to
			routes = append(routes, found)
			if e.Limit > 0 && len(routes) >= e.Limit {
				return routes, nil
			}
			continue
		}

		onPath[n] = struct{}{}
		path = append(path, n)
		stack = append(stack, frame{node: n})
	}

	return routes, nil
}
