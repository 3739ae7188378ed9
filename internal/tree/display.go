package tree

// Marker is the completion marker shown next to a node.
type Marker int

const (
	MarkerOpen    Marker = iota // Node itself is open.
	MarkerDone                  // Node and every descendant are done.
	MarkerPartial               // Node is done but some descendant is still open.
)

// String returns the marker's name.
func (m Marker) String() string {
	switch m {
	case MarkerDone:
		return "done"
	case MarkerPartial:
		return "done, partial"
	default:
		return "open"
	}
}

// CountDescendants returns the number of nodes below n, excluding n.
func CountDescendants(n *Node) int {
	count := len(n.Children)
	for _, child := range n.Children {
		count += CountDescendants(child)
	}
	return count
}

// AllDescendantsDone reports whether every node below n is done. It is true
// for a leaf.
func AllDescendantsDone(n *Node) bool {
	for _, child := range n.Children {
		if !child.IsDone() || !AllDescendantsDone(child) {
			return false
		}
	}
	return true
}

// CompletionMarker derives the display marker for n.
func CompletionMarker(n *Node) Marker {
	if !n.IsDone() {
		return MarkerOpen
	}
	if AllDescendantsDone(n) {
		return MarkerDone
	}
	return MarkerPartial
}
