package pdag

// Builder assembles a Graph by hand. It exists for tests and the
// cmd/canopybench demo harness: production callers with an existing PDAG
// representation implement Node/Graph directly instead.
type Builder struct {
	nodes map[int]*node
	root  *node
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[int]*node)}
}

type node struct {
	index       int
	order       int
	typ         Connective
	args        []Arg
	minNumber   int
	probability float64
}

func (n *node) Index() int          { return n.index }
func (n *node) Order() int          { return n.order }
func (n *node) SetOrder(order int)  { n.order = order }
func (n *node) Type() Connective    { return n.typ }
func (n *node) Args() []Arg         { return n.args }
func (n *node) MinNumber() int      { return n.minNumber }
func (n *node) Probability() float64 { return n.probability }

// BasicEvent adds a Bernoulli leaf with the given stable index and success
// probability.
func (b *Builder) BasicEvent(index int, probability float64) Node {
	n := &node{index: index, typ: Variable, probability: probability}
	b.nodes[index] = n
	return n
}

// Gate adds a gate node of the given connective over args. Atleast gates
// should use AtLeast instead, to supply K.
func (b *Builder) Gate(index int, connective Connective, args ...Arg) Node {
	n := &node{index: index, typ: connective, args: args}
	b.nodes[index] = n
	return n
}

// AtLeast adds a K-of-N gate.
func (b *Builder) AtLeast(index int, k int, args ...Arg) Node {
	n := &node{index: index, typ: Atleast, args: args, minNumber: k}
	b.nodes[index] = n
	return n
}

// Pos wraps n as a non-negated gate argument.
func Pos(n Node) Arg { return Arg{Node: n} }

// Neg wraps n as a negated (complemented) gate argument.
func Neg(n Node) Arg { return Arg{Negated: true, Node: n} }

// SetRoot designates n, previously returned by BasicEvent/Gate/AtLeast on
// this Builder, as the graph's root.
func (b *Builder) SetRoot(n Node) {
	b.root = n.(*node)
}

// Build returns the assembled Graph.
func (b *Builder) Build() Graph {
	return &graph{root: b.root, nodes: b.nodes}
}

type graph struct {
	root  *node
	nodes map[int]*node
}

func (g *graph) Root() Node { return g.root }

func (g *graph) BasicEvents() map[int]BasicEventRef {
	out := make(map[int]BasicEventRef, len(g.nodes))
	for i, n := range g.nodes {
		if n.typ == Variable {
			out[i] = n
		}
	}
	return out
}
