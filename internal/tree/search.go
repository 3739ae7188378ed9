package tree

// Find returns the node with the given id, searching depth-first pre-order
// from root, or nil if no node matches.
func Find(root *Node, id string) *Node {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, child := range root.Children {
		if found := Find(child, id); found != nil {
			return found
		}
	}
	return nil
}

// FindParent returns the node whose direct children include id. It returns
// nil for the root itself and for unknown ids.
func FindParent(root *Node, id string) *Node {
	if root == nil {
		return nil
	}
	for _, child := range root.Children {
		if child.ID == id {
			return root
		}
		if found := FindParent(child, id); found != nil {
			return found
		}
	}
	return nil
}

// Path returns the nodes from root to the target, both inclusive, or nil if
// the target is not in the tree.
func Path(root *Node, id string) []*Node {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return []*Node{root}
	}
	for _, child := range root.Children {
		if sub := Path(child, id); sub != nil {
			return append([]*Node{root}, sub...)
		}
	}
	return nil
}

// SiblingIndex returns the position of id within siblings, or -1.
func SiblingIndex(siblings []*Node, id string) int {
	for i, s := range siblings {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// PreviousSibling returns the sibling before id, or nil at the first
// position or when id is absent.
func PreviousSibling(siblings []*Node, id string) *Node {
	i := SiblingIndex(siblings, id)
	if i <= 0 {
		return nil
	}
	return siblings[i-1]
}

// NextSibling returns the sibling after id, or nil at the last position or
// when id is absent.
func NextSibling(siblings []*Node, id string) *Node {
	i := SiblingIndex(siblings, id)
	if i < 0 || i >= len(siblings)-1 {
		return nil
	}
	return siblings[i+1]
}
