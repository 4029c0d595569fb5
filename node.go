package vergraph

import "sort"

// versionNode is one stored version. parent is nil for a root or an orphan
// (the "none" sentinel of spec.md §3 is simply Go's nil pointer here,
// exactly the tagged-optional the design notes call for). children is kept
// sorted by VersionName and duplicate-free at all times.
type versionNode struct {
	name     VersionName
	parent   *versionNode
	children []*versionNode
}

// insertSortedChild inserts child into the receiver's children slice in
// sorted position. It panics if child's name is already present, since
// every call site has already checked for that case.
func (n *versionNode) insertSortedChild(child *versionNode) {
	idx, found := searchNodes(n.children, child.name)
	if found {
		panic("vergraph: duplicate child insert for " + "version already present")
	}
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = child
}

// removeChild removes the child named name from the receiver's children,
// reporting whether it was present.
func (n *versionNode) removeChild(name VersionName) bool {
	idx, found := searchNodes(n.children, name)
	if !found {
		return false
	}
	n.children = append(n.children[:idx], n.children[idx+1:]...)
	return true
}

// searchNodes returns the insertion index for name within a sorted,
// duplicate-free slice of *versionNode, and whether it is already present
// at that index.
func searchNodes(nodes []*versionNode, name VersionName) (index int, found bool) {
	idx := sort.Search(len(nodes), func(i int) bool {
		return !nodes[i].name.Less(name)
	})
	if idx < len(nodes) && nodes[idx].name == name {
		return idx, true
	}
	return idx, false
}

// insertSortedNode inserts n into a sorted, duplicate-free slice of
// *versionNode, returning the updated slice. It panics on a duplicate name,
// matching the original's assert(result.second) in CheckedInsert.
func insertSortedNode(nodes []*versionNode, n *versionNode) []*versionNode {
	idx, found := searchNodes(nodes, n.name)
	if found {
		panic("vergraph: duplicate insert for version already present")
	}
	nodes = append(nodes, nil)
	copy(nodes[idx+1:], nodes[idx:])
	nodes[idx] = n
	return nodes
}

// removeNode removes the node named name from a sorted slice of
// *versionNode, returning the updated slice and whether it was present.
func removeNode(nodes []*versionNode, name VersionName) ([]*versionNode, bool) {
	idx, found := searchNodes(nodes, name)
	if !found {
		return nodes, false
	}
	return append(nodes[:idx], nodes[idx+1:]...), true
}
