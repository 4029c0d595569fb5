package vergraph

import (
	"github.com/vmihailenco/msgpack/v5"
)

// FromBytes decodes a graph previously produced by Serialise, rebuilding its
// root, orphans, and tip index from the wire form's branches. It validates
// the decoded limits and rejects a stream that is structurally inconsistent
// (duplicate names, a branch with no versions, a malformed fork count), per
// spec.md §4.9.
func FromBytes(data []byte) (*VersionGraph, error) {
	return deserializeGraph(data)
}

func deserializeGraph(data []byte) (*VersionGraph, error) {
	var wg wireGraph
	if err := msgpack.Unmarshal(data, &wg); err != nil {
		return nil, newError(ParsingError, "decode graph: %v", err)
	}
	if wg.MaxVersions < 1 || wg.MaxBranches < 1 {
		return nil, newError(InvalidParameter, "decoded max_versions and max_branches must each be at least 1")
	}

	g := &VersionGraph{
		maxVersions: wg.MaxVersions,
		maxBranches: wg.MaxBranches,
		versions:    make(map[VersionName]*versionNode),
		orphans:     newOrphanIndex(),
	}

	cursor := 0
	for cursor < len(wg.Branches) {
		if err := g.branchFromWire(nil, wg.Branches, &cursor); err != nil {
			return nil, err
		}
	}

	if uint32(len(g.versions)) > g.maxVersions {
		return nil, newError(ParsingError, "decoded graph has more versions than its own max_versions")
	}
	if uint32(len(g.tips)) > g.maxBranches {
		return nil, newError(ParsingError, "decoded graph has more branch tips than its own max_branches")
	}
	return g, nil
}

// branchFromWire consumes one branch from branches at *cursor, inserting its
// versions and, at a fork, recursing once per declared child branch.
// Mirrors BranchFromCereal/HandleFirstVersionInBranchFromCereal: a branch
// with no parent node is either the root (the first one seen) or a fresh
// orphan bucket head (every one after).
func (g *VersionGraph) branchFromWire(parent *versionNode, branches []wireBranch, cursor *int) error {
	if *cursor >= len(branches) {
		return newError(ParsingError, "fork declares more child branches than the stream contains")
	}
	wb := branches[*cursor]
	*cursor++
	if len(wb.Names) == 0 {
		return newError(ParsingError, "branch has no versions")
	}

	head, err := g.checkedInsert(wb.Names[0])
	if err != nil {
		return err
	}

	if parent == nil {
		absentParent, err := fromWireVersionName(wb.AbsentParent)
		if err != nil {
			return err
		}
		if g.root == nil {
			g.rootAbsentParent = absentParent
			g.root = head
		} else {
			if !absentParent.IsInitialized() {
				return newError(ParsingError, "orphan branch head must declare an absent parent")
			}
			g.orphans.insert(absentParent, head)
		}
	} else {
		parent.children = insertSortedNode(parent.children, head)
		head.parent = parent
	}

	cur := head
	for i := 1; i < len(wb.Names); i++ {
		next, err := g.checkedInsert(wb.Names[i])
		if err != nil {
			return err
		}
		cur.children = insertSortedNode(cur.children, next)
		next.parent = cur
		cur = next
	}

	last := wb.Names[len(wb.Names)-1]
	if last.ForkingChildCount == nil {
		g.tips = insertSortedNode(g.tips, cur)
		return nil
	}

	count := *last.ForkingChildCount
	if count < 2 {
		return newError(ParsingError, "forking_child_count must be at least 2, got %d", count)
	}
	for i := uint32(0); i < count; i++ {
		if err := g.branchFromWire(cur, branches, cursor); err != nil {
			return err
		}
	}
	return nil
}

func (g *VersionGraph) checkedInsert(blob wireVersionBlob) (*versionNode, error) {
	name, err := fromWireBlob(blob)
	if err != nil {
		return nil, err
	}
	if _, exists := g.versions[name]; exists {
		return nil, newError(ParsingError, "version %+v appears twice in the stream", name)
	}
	node := &versionNode{name: name}
	g.versions[name] = node
	return node, nil
}

// ApplySerialised merges a serialized graph into g. It decodes data into a
// fresh graph, then replays every (parent, version) edge reachable from that
// graph's root branch and orphan branches onto a clone of g, in the decoded
// graph's own traversal order, per spec.md §4.8. g's own max_versions and
// max_branches are never altered by a merge — only the incoming graph's
// edges are new information; the clone absorbs them under g's existing
// budget. On success the clone's state is swapped in; on any failure
// (contradiction or capacity exhaustion) g is left exactly as it was,
// mirroring the teacher's apply-to-a-copy-then-swap pattern for atomicity.
func (g *VersionGraph) ApplySerialised(data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	incoming, err := deserializeGraph(data)
	if err != nil {
		return err
	}

	working := g.clone()

	if incoming.root != nil {
		if err := applyBranchOnto(working, incoming.rootAbsentParent, incoming.root); err != nil {
			return err
		}
	}
	for _, key := range incoming.orphans.keys {
		for _, orphan := range incoming.orphans.buckets[key] {
			if err := applyBranchOnto(working, key, orphan); err != nil {
				return err
			}
		}
	}

	g.adopt(working)
	log.Debug("merged serialised graph via union")
	return nil
}

// clone deep-copies g's nodes and indices into a fresh VersionGraph carrying
// the same limits, used as the working copy ApplySerialised mutates so that
// a failed merge never leaves g partially modified.
func (g *VersionGraph) clone() *VersionGraph {
	nodes := make(map[VersionName]*versionNode, len(g.versions))
	for name, n := range g.versions {
		nodes[name] = &versionNode{name: n.name}
	}
	for name, n := range g.versions {
		dup := nodes[name]
		if n.parent != nil {
			dup.parent = nodes[n.parent.name]
		}
		if len(n.children) > 0 {
			dup.children = make([]*versionNode, len(n.children))
			for i, c := range n.children {
				dup.children[i] = nodes[c.name]
			}
		}
	}

	clone := &VersionGraph{
		maxVersions: g.maxVersions,
		maxBranches: g.maxBranches,
		versions:    nodes,
		orphans:     newOrphanIndex(),
	}
	if g.root != nil {
		clone.root = nodes[g.root.name]
		clone.rootAbsentParent = g.rootAbsentParent
	}
	for _, t := range g.tips {
		clone.tips = append(clone.tips, nodes[t.name])
	}
	for _, key := range g.orphans.keys {
		for _, o := range g.orphans.buckets[key] {
			clone.orphans.insert(key, nodes[o.name])
		}
	}
	return clone
}

// adopt replaces g's versions, root, tips, and orphans with other's, used to
// swap in a freshly-merged working copy while g.mu is already held. g's
// mutex and limits are left as they are.
func (g *VersionGraph) adopt(other *VersionGraph) {
	g.versions = other.versions
	g.rootAbsentParent = other.rootAbsentParent
	g.root = other.root
	g.tips = other.tips
	g.orphans = other.orphans
}

// applyBranchOnto replays node and its descendants onto target as a
// sequence of Put calls, walking single-child runs iteratively and forking
// into one recursive call per child at a branch point. Mirrors ApplyBranch.
func applyBranchOnto(target *VersionGraph, parentName VersionName, node *versionNode) error {
	for {
		if _, err := target.Put(parentName, node.name); err != nil {
			return err
		}
		switch len(node.children) {
		case 0:
			return nil
		case 1:
			parentName = node.name
			node = node.children[0]
			continue
		default:
			parentName = node.name
			for _, child := range node.children {
				if err := applyBranchOnto(target, parentName, child); err != nil {
					return err
				}
			}
			return nil
		}
	}
}
