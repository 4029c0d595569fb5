// Package vergraph implements a bounded, versioned directed acyclic graph:
// a history of a mutable, content-addressed object where each node is an
// immutable snapshot and each edge records a parent-to-child derivation.
//
// The graph accepts out-of-order insertion, including children whose
// parents have not yet arrived ("orphans"); enforces a maximum version
// count and a maximum number of concurrent branch tips with deterministic
// eviction; and round-trips to a canonical binary form that two
// differently-ordered construction sequences for the same DAG will always
// produce identically.
//
// A VersionGraph is not safe for concurrent use by multiple goroutines
// without external synchronization; the embedded mutex here guards the
// fields mutated by Put the same way the teacher's MutableTree guards its
// bookkeeping maps, but callers serializing access themselves should not
// rely on it as the sole protection.
package vergraph

import (
	"bytes"
	"sync"

	"golang.org/x/sync/errgroup"
)

// VersionGraph is the Version Graph described by the package doc: a
// version store, a root pointer, a branch-tip index, and an orphan index,
// bound to two capacity limits.
type VersionGraph struct {
	mu sync.Mutex

	maxVersions uint32
	maxBranches uint32

	versions map[VersionName]*versionNode

	rootAbsentParent VersionName
	root             *versionNode

	tips []*versionNode

	orphans *orphanIndex
}

// New constructs an empty VersionGraph bounded by maxVersions stored
// versions and maxBranches concurrent branch tips. Both must be at least 1.
func New(maxVersions, maxBranches uint32) (*VersionGraph, error) {
	if maxVersions < 1 || maxBranches < 1 {
		return nil, newError(InvalidParameter, "max versions and max branches must each be at least 1")
	}
	return &VersionGraph{
		maxVersions: maxVersions,
		maxBranches: maxBranches,
		versions:    make(map[VersionName]*versionNode),
		orphans:     newOrphanIndex(),
	}, nil
}

// MaxVersions returns the configured version-count limit.
func (g *VersionGraph) MaxVersions() uint32 {
	return g.maxVersions
}

// MaxBranches returns the configured branch-tip limit.
func (g *VersionGraph) MaxBranches() uint32 {
	return g.maxBranches
}

// Put inserts newVersion as a child of oldVersion. oldVersion being
// uninitialized (or the graph being empty) requests a root insertion. It
// returns the name of a version evicted as a side effect, if any, and is a
// no-op returning (nil, nil) if newVersion is already stored with the same
// claimed parent.
func (g *VersionGraph) Put(oldVersion, newVersion VersionName) (*VersionName, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.put(oldVersion, newVersion)
}

func (g *VersionGraph) put(oldVersion, newVersion VersionName) (*VersionName, error) {
	noop, err := g.preExists(oldVersion, newVersion)
	if err != nil {
		return nil, err
	}
	if noop {
		return nil, nil
	}

	isRoot := !oldVersion.IsInitialized() || len(g.versions) == 0
	if isRoot && g.root != nil && !g.rootAbsentParent.IsInitialized() {
		return nil, newError(InvalidParameter, "a true root is already stored")
	}

	var parent *versionNode
	if !isRoot {
		parent = g.versions[oldVersion]
	}
	isOrphan := parent == nil && !isRoot

	candidate := &versionNode{name: newVersion, parent: parent}

	orphanBucket := g.orphans.bucket(newVersion)
	unorphansExistingRoot := g.root != nil && g.rootAbsentParent.IsInitialized() && g.rootAbsentParent == newVersion

	adopted := make([]*versionNode, 0, len(orphanBucket)+1)
	adopted = append(adopted, orphanBucket...)
	if unorphansExistingRoot {
		adopted = append(adopted, g.root)
	}
	for _, child := range adopted {
		candidate.children = insertSortedNode(candidate.children, child)
	}

	if err := checkNoCycles(adopted, newVersion); err != nil {
		return nil, err
	}

	eraseExistingRoot := false
	if uint32(len(g.versions)) == g.maxVersions {
		if isRoot || unorphansExistingRoot {
			// This version would become root only to be immediately
			// evicted again to stay within max_versions.
			evicted := newVersion
			return &evicted, nil
		}
		eraseExistingRoot = true
	}

	if uint32(len(g.tips)) == g.maxBranches && len(orphanBucket) == 0 {
		parentHadChildren := parent != nil && len(parent.children) > 0
		if isOrphan || parentHadChildren {
			rootIsTip := g.root != nil && len(g.root.children) == 0
			if rootIsTip {
				eraseExistingRoot = true
			} else {
				return nil, newError(CannotExceedLimit, "put would exceed max branches")
			}
		}
	}

	return g.commit(candidate, isRoot, isOrphan, oldVersion, len(orphanBucket), unorphansExistingRoot, eraseExistingRoot)
}

// preExists implements spec step 1: if newVersion is already stored, this
// Put must either be a harmless replay of the same edge (ok=true) or a
// contradiction of stored state (an error).
func (g *VersionGraph) preExists(oldVersion, newVersion VersionName) (ok bool, err error) {
	existing, found := g.versions[newVersion]
	if !found {
		return false, nil
	}
	if existing.parent == nil {
		if g.root != nil && newVersion == g.root.name {
			if g.rootAbsentParent == oldVersion {
				return true, nil
			}
			return false, newError(InvalidParameter, "version %+v is already the root with a different claimed parent", newVersion)
		}
		key, _, found := g.orphans.find(newVersion)
		if !found {
			return false, newError(Unknown, "version %+v has no stored parent but is neither root nor orphan", newVersion)
		}
		if key == oldVersion {
			return true, nil
		}
		return false, newError(InvalidParameter, "version %+v is already orphaned under a different parent", newVersion)
	}
	if existing.parent.name == oldVersion {
		return true, nil
	}
	return false, newError(InvalidParameter, "version %+v is already stored with a different parent", newVersion)
}

// commit performs the transactional insertion of candidate once every
// pre-flight check has passed, mirroring Insert/SetVersionAsChildOfItsParent
// /Unorphan/UnorphanRoot/ReplaceRoot in the original.
func (g *VersionGraph) commit(
	candidate *versionNode,
	isRoot, isOrphan bool,
	oldVersion VersionName,
	unorphanCount int,
	unorphansExistingRoot, eraseExistingRoot bool,
) (*VersionName, error) {
	g.versions[candidate.name] = candidate

	if unorphanCount > 0 {
		g.unorphanChildren(candidate)
	}

	if !isRoot && !isOrphan {
		g.setAsChildOfParent(candidate)
	}

	if isOrphan && !unorphansExistingRoot {
		g.orphans.insert(oldVersion, candidate)
	}

	if isRoot && g.root != nil && g.rootAbsentParent.IsInitialized() && !unorphansExistingRoot {
		// The previous root was only ever a stand-in for the true root
		// that has just arrived; it becomes an orphan of its own claimed
		// parent.
		g.orphans.insert(g.rootAbsentParent, g.root)
	}

	var removed *VersionName
	switch {
	case isRoot:
		if unorphansExistingRoot {
			if err := g.unorphanRoot(candidate, true, oldVersion); err != nil {
				return nil, err
			}
		} else {
			g.rootAbsentParent = oldVersion
			g.root = candidate
		}
	case unorphansExistingRoot:
		if err := g.unorphanRoot(candidate, isOrphan, oldVersion); err != nil {
			return nil, err
		}
	case eraseExistingRoot:
		removedName := g.root.name
		removed = &removedName
		g.replaceRoot()
	}

	if len(candidate.children) == 0 {
		g.tips = insertSortedNode(g.tips, candidate)
	}

	return removed, nil
}

func (g *VersionGraph) unorphanChildren(parent *versionNode) {
	bucket := g.orphans.bucket(parent.name)
	for _, child := range bucket {
		child.parent = parent
	}
	g.orphans.eraseAll(parent.name)
}

func (g *VersionGraph) setAsChildOfParent(candidate *versionNode) {
	parent := candidate.parent
	if len(parent.children) == 0 {
		g.tips, _ = removeNode(g.tips, parent.name)
	}
	parent.children = insertSortedNode(parent.children, candidate)
}

// unorphanRoot rewires the current root under parent. If isRootOrOrphan,
// parent (or the version being put) itself becomes the new root; otherwise
// the walk climbs parent links until it finds the orphan head that must be
// promoted instead, per spec.md §4.1's commit-phase contract.
func (g *VersionGraph) unorphanRoot(parent *versionNode, isRootOrOrphan bool, oldVersion VersionName) error {
	oldRoot := g.root
	oldRoot.parent = parent

	if isRootOrOrphan {
		g.rootAbsentParent = oldVersion
		g.root = parent
		return nil
	}

	newRoot := parent
	for newRoot.parent != nil {
		newRoot = newRoot.parent
	}
	key, node, found := g.orphans.find(newRoot.name)
	if !found {
		return newError(Unknown, "expected %+v to be a pending orphan while unorphaning root", newRoot.name)
	}
	g.orphans.erase(key, node.name)
	g.rootAbsentParent = key
	g.root = node
	return nil
}

// replaceRoot evicts the current root to make room for a new version,
// mirroring ReplaceRoot/ReplaceRootFromOrphans/ReplaceRootFromChildren.
func (g *VersionGraph) replaceRoot() {
	g.tips, _ = removeNode(g.tips, g.root.name)

	if len(g.root.children) == 0 {
		g.replaceRootFromOrphans()
	} else {
		g.replaceRootFromChildren()
	}
}

func (g *VersionGraph) replaceRootFromOrphans() {
	delete(g.versions, g.root.name)
	if g.orphans.empty() {
		log.Debug("evicted last root, graph is now empty")
		g.root = nil
		g.rootAbsentParent = VersionName{}
		return
	}
	key, node := g.orphans.least()
	g.orphans.erase(key, node.name)
	g.rootAbsentParent = key
	g.root = node
}

func (g *VersionGraph) replaceRootFromChildren() {
	oldRootName := g.root.name
	children := g.root.children
	newRoot := children[0]
	newRoot.parent = nil

	for _, sibling := range children[1:] {
		sibling.parent = nil
		g.orphans.insert(oldRootName, sibling)
	}

	delete(g.versions, oldRootName)
	g.rootAbsentParent = oldRootName
	g.root = newRoot
	log.WithField("evicted", oldRootName.Index).Debug("promoted least child to root")
}

// checkNoCycles verifies that none of the nodes in adopted (the orphans and
// possibly the existing root being unorphaned under target) can already
// reach target by following children downward — that would mean target is
// already an ancestor of one of them, and adopting them under target would
// create a cycle. Each adopted subtree is walked by a short-lived goroutine
// per fork, joined before Put mutates any state (spec.md §4.1 step 4, §5).
func checkNoCycles(adopted []*versionNode, target VersionName) error {
	if len(adopted) == 0 {
		return nil
	}
	var eg errgroup.Group
	for _, start := range adopted {
		walkForCycle(&eg, start, target)
	}
	return eg.Wait()
}

func walkForCycle(eg *errgroup.Group, start *versionNode, target VersionName) {
	cur := start
	for {
		if len(cur.children) == 0 {
			return
		}
		first := cur.children[0]
		for _, child := range cur.children {
			if child.name == target {
				eg.Go(func() error {
					return newError(InvalidParameter, "putting %+v would create a cycle", target)
				})
				return
			}
		}
		for _, sibling := range cur.children[1:] {
			sibling := sibling
			eg.Go(func() error {
				walkForCycle(eg, sibling, target)
				return nil
			})
		}
		cur = first
	}
}

// Get returns the names of every current branch tip, sorted ascending.
func (g *VersionGraph) Get() []VersionName {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]VersionName, len(g.tips))
	for i, t := range g.tips {
		names[i] = t.name
	}
	return names
}

// GetBranch returns the names from tip up to (and including) the root or
// orphan at the head of its branch, in that order.
func (g *VersionGraph) GetBranch(tip VersionName) ([]VersionName, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	node, err := g.checkBranchTip(tip)
	if err != nil {
		return nil, err
	}
	var result []VersionName
	for n := node; n != nil; n = n.parent {
		result = append(result, n.name)
	}
	return result, nil
}

func (g *VersionGraph) checkBranchTip(name VersionName) (*versionNode, error) {
	if idx, found := searchNodes(g.tips, name); found {
		return g.tips[idx], nil
	}
	if _, stored := g.versions[name]; !stored {
		return nil, newError(NoSuchElement, "version %+v is not stored", name)
	}
	return nil, newError(InvalidParameter, "version %+v is stored but is not a branch tip", name)
}

// DeleteBranchUntilFork removes tip and walks upward, deleting ancestors
// until it reaches one with another remaining child (a fork) or the head of
// the branch (root or orphan).
func (g *VersionGraph) DeleteBranchUntilFork(tip VersionName) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	node, err := g.checkBranchTip(tip)
	if err != nil {
		return err
	}
	g.tips, _ = removeNode(g.tips, node.name)

	cur := node
	for {
		parent := cur.parent
		if parent == nil {
			g.eraseFrontOfBranch(cur)
			return nil
		}
		parent.removeChild(cur.name)
		delete(g.versions, cur.name)
		if len(parent.children) > 0 {
			return nil
		}
		cur = parent
	}
}

func (g *VersionGraph) eraseFrontOfBranch(front *versionNode) {
	if g.root == front {
		if g.orphans.empty() {
			delete(g.versions, front.name)
			g.root = nil
			g.rootAbsentParent = VersionName{}
			return
		}
		g.replaceRootFromOrphans()
		return
	}
	if key, _, found := g.orphans.find(front.name); found {
		g.orphans.erase(key, front.name)
	}
	delete(g.versions, front.name)
}

// Clear empties the graph, discarding every stored version, orphan, and tip.
func (g *VersionGraph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.versions = make(map[VersionName]*versionNode)
	g.root = nil
	g.rootAbsentParent = VersionName{}
	g.tips = nil
	g.orphans.clear()
}

// Equal reports whether g and other are structurally identical: same
// limits and the same DAG, regardless of the Put order used to build
// either. It compares canonical serialized forms, which is valid because
// Serialise is order-independent (spec.md §8 P3/S4).
func (g *VersionGraph) Equal(other *VersionGraph) bool {
	a, errA := g.Serialise()
	b, errB := other.Serialise()
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}
