package vergraph

import (
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Serialise encodes the graph into the canonical wire format of spec.md §6:
// max_versions and max_branches, followed by the root branch (if any) and
// then every orphan branch, each walked depth-first and split at forks.
// The output depends only on the graph's current structure, not on the order
// of the Puts that built it; the decoder relies on that branch order and on
// the forking_child_count hint to rebuild each fork.
func (g *VersionGraph) Serialise() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	wg := wireGraph{MaxVersions: g.maxVersions, MaxBranches: g.maxBranches}

	if g.root != nil {
		var absentParent *wireVersionName
		if g.rootAbsentParent.IsInitialized() {
			absentParent = toWireVersionName(g.rootAbsentParent)
		}
		appendBranch(&wg, absentParent, g.root)
	}

	for _, key := range g.orphans.keys {
		wireKey := toWireVersionName(key)
		for _, orphan := range g.orphans.buckets[key] {
			appendBranch(&wg, wireKey, orphan)
		}
	}

	data, err := msgpack.Marshal(&wg)
	if err != nil {
		return nil, errors.Wrap(err, "vergraph: encode graph")
	}
	return data, nil
}

// appendBranch reserves a new branch in wg headed by start (with the given
// absent-parent hint, nil for an interior branch reached through a fork) and
// fills it. Mirrors the original's BranchToCereal.
func appendBranch(wg *wireGraph, absentParent *wireVersionName, start *versionNode) {
	idx := len(wg.Branches)
	wg.Branches = append(wg.Branches, wireBranch{AbsentParent: absentParent})
	fillBranch(wg, idx, start)
}

// fillBranch walks the single-child spine starting at node, appending one
// blob per version, then either stops (tip) or forks: at a fork it records
// forking_child_count on the last blob and recurses into a fresh branch per
// child, in ascending VersionName order.
func fillBranch(wg *wireGraph, branchIdx int, node *versionNode) {
	for {
		blob := wireVersionBlob{Index: node.name.Index, ID: append([]byte(nil), node.name.ID[:]...)}

		switch len(node.children) {
		case 0:
			wg.Branches[branchIdx].Names = append(wg.Branches[branchIdx].Names, blob)
			return
		case 1:
			wg.Branches[branchIdx].Names = append(wg.Branches[branchIdx].Names, blob)
			node = node.children[0]
			continue
		default:
			count := uint32(len(node.children))
			blob.ForkingChildCount = &count
			wg.Branches[branchIdx].Names = append(wg.Branches[branchIdx].Names, blob)
			for _, child := range node.children {
				appendBranch(wg, nil, child)
			}
			return
		}
	}
}
