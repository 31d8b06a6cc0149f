package main

import "github.com/luxfi/canopy/pdag"

// buildDemoGraph constructs a small synthetic fault tree:
//
//	root = OR(AND(A, B), C)
//
// just large enough to exercise a multi-wave plan (variables -> AND ->
// OR) with the configured event probabilities.
func buildDemoGraph(cfg Config) (pdag.Graph, pdag.Node) {
	b := pdag.NewBuilder()
	a := b.BasicEvent(1, cfg.ProbabilityA)
	bEvt := b.BasicEvent(2, cfg.ProbabilityB)
	c := b.BasicEvent(3, cfg.ProbabilityC)
	and := b.Gate(4, pdag.And, pdag.Pos(a), pdag.Pos(bEvt))
	root := b.Gate(5, pdag.Or, pdag.Pos(and), pdag.Pos(c))
	b.SetRoot(root)
	return b.Build(), root
}
