package node

// Holder sentinels. A Node's holder field is either one of these two
// sentinels or a real neighbour id (always >= 0, so the sentinels are
// negative and never collide with a real id).
const (
	// Self means this node's holder field points at itself: it is the
	// privilege root.
	Self = -1
	// Unknown means this node has not yet been oriented — the state right
	// after crash(), before recovery completes.
	Unknown = -2
)

// adviseEntry is one (neighbour, code) pair collected into advise_answers
// during recovery.
type adviseEntry struct {
	neighbor int
	code     int
}

// Snapshot is a read-only, point-in-time copy of a Node's externally
// visible state. The workload driver reads Snapshots instead of touching
// Node fields directly; these reads are advisory and may race harmlessly
// against the node's own event loop.
type Snapshot struct {
	Number     int
	Neighbors  []int
	Holder     int
	Using      bool
	Asked      bool
	IAsked     bool
	Recovering bool
	RequestQ   []int
}

// Phase classifies the six mutually exclusive states the original
// Python controller colored for visualisation (red/green/blue/black/
// yellow/gray in controller.py's node_color) by name instead of color.
// The visualisation layer itself stays out of scope; this just gives one
// a clean, stable classification to render.
func (s Snapshot) Phase() string {
	switch {
	case s.Using:
		return "using"
	case s.Holder == Self:
		return "root-idle"
	case s.Asked:
		return "asked"
	case s.Holder == Unknown:
		return "unoriented"
	case s.Recovering:
		return "recovering"
	default:
		return "idle"
	}
}
