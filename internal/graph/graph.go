package graph

import (
	"fmt"
	"slices"

	"github.com/rogersnm/linkbook/internal/model"
)

// Graph is an undirected view over a collection's related-object links.
type Graph struct {
	nodes map[int64]*model.ManagedObject
	order []int64
	edges map[int64][]int64 // object -> related ids as stored
}

func Build(objects []model.ManagedObject) *Graph {
	g := &Graph{
		nodes: make(map[int64]*model.ManagedObject, len(objects)),
		edges: make(map[int64][]int64, len(objects)),
	}
	for i := range objects {
		o := &objects[i]
		// The first object with a given id wins, as when the store loads.
		if _, dup := g.nodes[o.ID]; dup {
			continue
		}
		g.order = append(g.order, o.ID)
		g.nodes[o.ID] = o
		g.edges[o.ID] = append([]int64{}, o.RelatedObjectIDs...)
	}
	return g
}

func (g *Graph) Node(id int64) *model.ManagedObject {
	return g.nodes[id]
}

func (g *Graph) Len() int {
	return len(g.order)
}

// Neighbors returns the present objects linked from id, sorted.
func (g *Graph) Neighbors(id int64) []int64 {
	var out []int64
	for _, r := range g.edges[id] {
		if _, ok := g.nodes[r]; ok && r != id && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return out
}

// Reachable returns every object transitively linked to id, excluding id.
func (g *Graph) Reachable(id int64) []int64 {
	visited := map[int64]bool{id: true}
	var result []int64
	var walk func(int64)
	walk = func(node int64) {
		for _, n := range g.Neighbors(node) {
			if !visited[n] {
				visited[n] = true
				result = append(result, n)
				walk(n)
			}
		}
	}
	walk(id)
	slices.Sort(result)
	return result
}

// Components groups objects into connected components. Each component is
// sorted and components are ordered by their smallest id.
func (g *Graph) Components() [][]int64 {
	ids := slices.Clone(g.order)
	slices.Sort(ids)

	seen := make(map[int64]bool, len(ids))
	var comps [][]int64
	for _, id := range ids {
		if seen[id] {
			continue
		}
		comp := append([]int64{id}, g.Reachable(id)...)
		for _, c := range comp {
			seen[c] = true
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	return comps
}

type ViolationKind string

const (
	Asymmetric    ViolationKind = "asymmetric"
	Dangling      ViolationKind = "dangling"
	SelfReference ViolationKind = "self-reference"
	Duplicate     ViolationKind = "duplicate"
)

// Violation describes one broken link invariant.
type Violation struct {
	Kind ViolationKind
	From int64
	To   int64
}

func (v Violation) String() string {
	switch v.Kind {
	case Asymmetric:
		return fmt.Sprintf("%d links to %d but %d does not link back", v.From, v.To, v.To)
	case Dangling:
		return fmt.Sprintf("%d links to missing object %d", v.From, v.To)
	case SelfReference:
		return fmt.Sprintf("%d links to itself", v.From)
	case Duplicate:
		return fmt.Sprintf("%d lists %d more than once", v.From, v.To)
	default:
		return fmt.Sprintf("%s: %d -> %d", v.Kind, v.From, v.To)
	}
}

// Violations checks symmetry, dangling references, self references and
// repeated ids. Results follow collection order.
func (g *Graph) Violations() []Violation {
	var out []Violation
	for _, id := range g.order {
		seen := make(map[int64]bool)
		for _, r := range g.edges[id] {
			if seen[r] {
				out = append(out, Violation{Kind: Duplicate, From: id, To: r})
				continue
			}
			seen[r] = true
			switch {
			case r == id:
				out = append(out, Violation{Kind: SelfReference, From: id, To: id})
			case g.nodes[r] == nil:
				out = append(out, Violation{Kind: Dangling, From: id, To: r})
			case !slices.Contains(g.edges[r], id):
				out = append(out, Violation{Kind: Asymmetric, From: id, To: r})
			}
		}
	}
	return out
}
