package circuit

// Component is the subset of a two-terminal component's contract the
// circuit and matrix builder need, without depending on any concrete
// component implementation. Concrete components live in pkg/component and
// satisfy this interface; Node and Circuit only ever see it through here,
// which is what lets pkg/component depend on pkg/circuit instead of the
// reverse (the original C++ has Node/Component/Circuit as one mutually
// recursive cluster; spec.md §9 asks for handle/interface discipline
// instead of raw aliasing pointers).
type Component interface {
	// FullyConnected reports whether both terminals are bound.
	FullyConnected() bool

	// IExpr returns the current-through-this-component expression for the
	// circuit's current mode (DC or transient). An empty expression means
	// this component does not define a current of its own: if VExpr is
	// non-empty it gets an MNA branch-current variable instead, otherwise
	// it carries no current (an open circuit).
	IExpr() Expression

	// VExpr returns the voltage-across-this-component expression for the
	// circuit's current mode. A non-empty expression means the matrix
	// builder must allocate an extra branch-current variable for it.
	VExpr() Expression

	// Top and Bot return the two bound nodes (nil if not yet connected).
	Top() *Node
	Bot() *Node

	// BindCircuitExprs receives the final circuit_v_expr/circuit_i_expr
	// (V_top-V_bot reference form, and either i_expr() or a reference to
	// this component's MNA branch-current slot) computed by the builder.
	BindCircuitExprs(v, i Expression)
}

// IntegratingComponent is additionally satisfied by energy-storing
// components (capacitor, inductor) that own a state variable integrated by
// the ODE driver.
type IntegratingComponent interface {
	Component

	// InitialCondSpecified reports whether the user set an initial
	// condition explicitly (in which case GenInitialCond must not run).
	InitialCondSpecified() bool

	// GenInitialCond latches the initial condition from this component's
	// now-solved DC voltage/current.
	GenInitialCond()

	// DydtExpr returns the expression giving d(state)/dt.
	DydtExpr() Expression

	// BindVar points this component's integration variable at its slot in
	// the ODE state vector.
	BindVar(v *float64)

	// InitialCond returns the value to seed the state vector with: either
	// the user-specified initial condition, or (after DC priming and
	// GenInitialCond) the latched steady-state value.
	InitialCond() float64
}

// Entering and Leaving tag which way conventional current flows across a
// node/component binding: Entering means current flows from the component
// into the node, Leaving means it flows from the node into the component.
const (
	Entering = true
	Leaving  = false
)

// Node is a junction: identity, parent circuit, and an optional fixed
// voltage. A free node owns no voltage of its own; the matrix builder binds
// its voltage reference into a slot of the solved vector. A fixed node owns
// an immutable voltage forever.
type Node struct {
	parent *Circuit
	fixed  bool
	fixedV float64

	// idx is this node's row/column index in the most recent matrix build.
	// Valid only between a build and the next topology change, same as v.
	idx int

	// v is this node's live voltage reference. For a free node it points
	// into Circuit.solvedVec after a matrix build; for a fixed node it
	// points at fixedV permanently. Valid only between a build and the
	// next topology change for free nodes.
	v *float64

	// order lists connected components in insertion order (connections
	// maps each to its direction bit) so KCL-row assembly is deterministic
	// across rebuilds of the same topology (spec §8 round trip law).
	order       []Component
	connections map[Component]bool

	autoSave bool
	vHist    []float64
}

func newNode(c *Circuit) *Node {
	n := &Node{
		parent:      c,
		connections: make(map[Component]bool),
	}
	n.v = &n.fixedV // harmless default until bound by a build
	return n
}

func newFixedNode(c *Circuit, voltage float64) *Node {
	n := newNode(c)
	n.fixed = true
	n.fixedV = voltage
	n.v = &n.fixedV
	return n
}

// Fixed reports whether this node has a prescribed constant voltage.
func (n *Node) Fixed() bool { return n.fixed }

// Parent returns the circuit this node was allocated from, letting
// pkg/component reject a node/component pairing that spans two circuits.
func (n *Node) Parent() *Circuit { return n.parent }

// V returns this node's live voltage reference.
func (n *Node) V() *float64 { return n.v }

// Voltage returns the node's current voltage.
func (n *Node) Voltage() float64 { return *n.v }

// AutoSave reports whether this node's voltage is saved on every
// save_states() call.
func (n *Node) AutoSave() bool { return n.autoSave }

// SetAutoSave toggles automatic history recording for this node.
func (n *Node) SetAutoSave(v bool) { n.autoSave = v }

// VHist returns the recorded voltage history.
func (n *Node) VHist() []float64 { return n.vHist }

func (n *Node) saveHist() {
	n.vHist = append(n.vHist, n.Voltage())
}

func (n *Node) clearHist() {
	n.vHist = nil
}

// Bind registers a component terminal at this node with the given current
// direction (entering or leaving), marking the circuit's topology dirty.
// Callers in pkg/component are responsible for rejecting double/self
// connections before calling Bind.
func (n *Node) Bind(c Component, entering bool) {
	n.order = append(n.order, c)
	n.connections[c] = entering
	n.parent.topologyChanged()
}

// FlipDirection inverts the recorded current direction for c, used by a
// component's Flip.
func (n *Node) FlipDirection(c Component) {
	if _, ok := n.connections[c]; ok {
		n.connections[c] = !n.connections[c]
	}
}

// Unbind removes c from this node's adjacency list entirely, marking the
// circuit's topology dirty.
func (n *Node) Unbind(c Component) {
	delete(n.connections, c)
	for i, cc := range n.order {
		if cc == c {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	n.parent.topologyChanged()
}
