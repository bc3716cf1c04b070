// Package pathfind turns the explorer's grid into candidate routes: it picks
// the next target, builds the adjacency graph of traversable tiles and
// enumerates every simple path from the start to the target.
package pathfind

import (
	"github.com/beka-birhanu/vinom-pathfinder/lake"
)

// Edge connects two horizontally or vertically adjacent tiles.
type Edge struct {
	From lake.Coordinate
	To   lake.Coordinate
}

// Graph is an undirected graph over every materialised coordinate of a
// grid snapshot.
type Graph struct {
	nodes     []lake.Coordinate
	adjacency map[lake.Coordinate][]lake.Coordinate
	edges     []Edge
}

// BuildGraph derives a fresh graph from the current grid. An edge exists
// only when neither endpoint is a Hole or Filler tile.
func BuildGraph(g *lake.Grid) *Graph {
	graph := &Graph{
		adjacency: make(map[lake.Coordinate][]lake.Coordinate, g.Width()*g.Height()),
	}

	g.Each(func(c lake.Coordinate, t lake.Tile) {
		graph.nodes = append(graph.nodes, c)
		graph.adjacency[c] = nil
		if !t.Traversable() {
			return
		}
		for _, d := range lake.Directions {
			n := c.Neighbor(d)
			if !g.InBounds(n) || !g.At(n).Traversable() {
				continue
			}
			graph.adjacency[c] = append(graph.adjacency[c], n)
			// Each undirected edge is listed once, from the tile it was reached from.
			if d == lake.Left || d == lake.Up {
				graph.edges = append(graph.edges, Edge{From: n, To: c})
			}
		}
	})

	return graph
}

// Nodes returns every coordinate in row-major order.
func (g *Graph) Nodes() []lake.Coordinate {
	return g.nodes
}

// Has reports whether c is a node of the graph.
func (g *Graph) Has(c lake.Coordinate) bool {
	_, ok := g.adjacency[c]
	return ok
}

// Neighbors returns the nodes sharing an edge with c, in Up, Down, Left,
// Right order.
func (g *Graph) Neighbors(c lake.Coordinate) []lake.Coordinate {
	return g.adjacency[c]
}

// Edges returns every edge once.
func (g *Graph) Edges() []Edge {
	return g.edges
}
