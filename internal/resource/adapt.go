package resource

// Status is the outcome of adapting a path to a typed view.
type Status int

const (
	// Missing means no node exists at the path.
	Missing Status = iota
	// WrongType means a node exists but its type tag does not match.
	WrongType
	// Found means the node exists and carries one of the requested tags.
	Found
)

// String returns the string representation of the Status
func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case WrongType:
		return "wrong_type"
	default:
		return "missing"
	}
}

// Adaptation is the typed result of looking a path up for a given tag.
type Adaptation struct {
	Path   string
	Node   *Node
	Status Status
}

// OK reports whether the adaptation found a node of the requested type.
func (a Adaptation) OK() bool {
	return a.Status == Found
}

// Adapt resolves p and checks the node's type tag against tags.
func Adapt(store Store, p string, tags ...string) Adaptation {
	p = Clean(p)
	n, ok := store.Resolve(p)
	if !ok {
		return Adaptation{Path: p, Status: Missing}
	}
	return AdaptNode(n, tags...)
}

// AdaptNode checks an already-resolved node against tags. A nil node is Missing.
func AdaptNode(n *Node, tags ...string) Adaptation {
	if n == nil {
		return Adaptation{Status: Missing}
	}
	for _, tag := range tags {
		if n.Type == tag {
			return Adaptation{Path: n.Path, Node: n, Status: Found}
		}
	}
	return Adaptation{Path: n.Path, Node: n, Status: WrongType}
}

// FirstAdaptation adapts each candidate in turn and returns the first Found
// result. When nothing is found the result with the strongest status seen is
// returned, so a WrongType candidate is reported ahead of a Missing one.
func FirstAdaptation(store Store, candidates []string, tags ...string) Adaptation {
	best := Adaptation{Status: Missing}
	for _, p := range candidates {
		a := Adapt(store, p, tags...)
		if a.OK() {
			return a
		}
		if a.Status > best.Status {
			best = a
		}
	}
	return best
}
