// Package layer implements the Layer Planner (C1): it gathers every node
// reachable from a PDAG's root, assigns layer orders via
// pdag.LayeredTopologicalOrder, and buckets each layer into a Wave —
// variables first, then gates grouped by connective — so that later
// components can schedule one kernel launch per (wave, connective) pair.
package layer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/luxfi/canopy/pdag"
)

var (
	// ErrDuplicateIndex is returned when two distinct node instances report
	// the same Index() while traversing the graph from the root.
	ErrDuplicateIndex = errors.New("layer: duplicate node index")
	// ErrUnsupportedConnective is returned for a node whose connective is
	// not one of the eight implemented gate kernels (Iff, Imply and
	// Cardinality are not implemented; see SPEC_FULL.md §4.1).
	ErrUnsupportedConnective = errors.New("layer: unsupported connective")
)

// Wave is one layer's scheduling unit: the variables (basic events) and
// gates, bucketed by connective, that may all be evaluated concurrently
// once every earlier wave has completed.
type Wave struct {
	Variables []pdag.Node

	// Gates maps connective to the gates of that connective present in this
	// wave, in the order they were reached while gathering the graph.
	// Connectives lists the keys of Gates in ascending connective order, so
	// callers iterate the wave's gate kernels deterministically.
	Gates       map[pdag.Connective][]pdag.Node
	Connectives []pdag.Connective
}

// Plan lays out g into an ordered slice of waves, indexed by layer order
// (Plan(g)[i] holds every node with Order() == i). It runs
// pdag.LayeredTopologicalOrder itself, mirroring the original layered
// toposort entry point that both orders and gathers nodes in one pass.
func Plan(g pdag.Graph) ([]Wave, error) {
	if err := pdag.LayeredTopologicalOrder(g); err != nil {
		return nil, err
	}

	nodes, err := gatherReachable(g.Root())
	if err != nil {
		return nil, err
	}

	maxOrder := 0
	for _, n := range nodes {
		if n.Order() > maxOrder {
			maxOrder = n.Order()
		}
	}

	byOrder := make([][]pdag.Node, maxOrder+1)
	for _, n := range nodes {
		byOrder[n.Order()] = append(byOrder[n.Order()], n)
	}

	waves := make([]Wave, len(byOrder))
	for i, layerNodes := range byOrder {
		w, err := partition(layerNodes)
		if err != nil {
			return nil, fmt.Errorf("layer: wave %d: %w", i, err)
		}
		waves[i] = w
	}
	return waves, nil
}

func partition(nodes []pdag.Node) (Wave, error) {
	w := Wave{Gates: make(map[pdag.Connective][]pdag.Node)}
	for _, n := range nodes {
		switch n.Type() {
		case pdag.Variable:
			w.Variables = append(w.Variables, n)
		case pdag.And, pdag.Or, pdag.Not, pdag.Nand, pdag.Nor, pdag.Xor, pdag.Null, pdag.Atleast:
			if _, seen := w.Gates[n.Type()]; !seen {
				w.Connectives = append(w.Connectives, n.Type())
			}
			w.Gates[n.Type()] = append(w.Gates[n.Type()], n)
		default:
			return Wave{}, fmt.Errorf("%w: %s (node %d)", ErrUnsupportedConnective, n.Type(), n.Index())
		}
	}
	// Stable, deterministic iteration order for connectives discovered in
	// this wave regardless of map iteration order elsewhere.
	sort.Slice(w.Connectives, func(i, j int) bool { return w.Connectives[i] < w.Connectives[j] })
	return w, nil
}

func gatherReachable(root pdag.Node) ([]pdag.Node, error) {
	visited := make(map[int]pdag.Node)
	var nodes []pdag.Node

	var visit func(n pdag.Node) error
	visit = func(n pdag.Node) error {
		if existing, ok := visited[n.Index()]; ok {
			if existing != n {
				return fmt.Errorf("%w: %d", ErrDuplicateIndex, n.Index())
			}
			return nil
		}
		visited[n.Index()] = n
		nodes = append(nodes, n)

		for _, a := range n.Args() {
			if a.Node == nil {
				return fmt.Errorf("%w: gate %d", pdag.ErrUnknownArgument, n.Index())
			}
			if err := visit(a.Node); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return nodes, nil
}
