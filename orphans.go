package vergraph

// orphanIndex maps an absent parent name to the sorted set of stored
// versions that claim it as their parent. Iteration order matches the
// original's sorted map (std::map<VersionName, ...>): keys ascending, and
// each bucket's versions ascending.
type orphanIndex struct {
	keys    []VersionName
	buckets map[VersionName][]*versionNode
}

func newOrphanIndex() *orphanIndex {
	return &orphanIndex{buckets: make(map[VersionName][]*versionNode)}
}

// insert adds orphan to the bucket for absentParent.
func (o *orphanIndex) insert(absentParent VersionName, orphan *versionNode) {
	bucket, ok := o.buckets[absentParent]
	if !ok {
		o.keys = insertSortedVersionNames(o.keys, absentParent)
	}
	o.buckets[absentParent] = insertSortedNode(bucket, orphan)
}

// bucket returns the (possibly nil) slice of orphans claiming parentName.
func (o *orphanIndex) bucket(parentName VersionName) []*versionNode {
	return o.buckets[parentName]
}

// find locates the bucket key and orphan node named name, if any.
func (o *orphanIndex) find(name VersionName) (key VersionName, node *versionNode, ok bool) {
	for _, k := range o.keys {
		if idx, found := searchNodes(o.buckets[k], name); found {
			return k, o.buckets[k][idx], true
		}
	}
	return VersionName{}, nil, false
}

// erase removes the orphan named name from the bucket keyed by key,
// dropping the bucket entirely if it becomes empty.
func (o *orphanIndex) erase(key VersionName, name VersionName) {
	bucket, ok := o.buckets[key]
	if !ok {
		return
	}
	updated, found := removeNode(bucket, name)
	if !found {
		return
	}
	if len(updated) == 0 {
		delete(o.buckets, key)
		o.keys, _ = removeSortedVersionName(o.keys, key)
		return
	}
	o.buckets[key] = updated
}

// eraseAll drops the entire bucket keyed by key, whatever it contains.
func (o *orphanIndex) eraseAll(key VersionName) {
	if _, ok := o.buckets[key]; !ok {
		return
	}
	delete(o.buckets, key)
	o.keys, _ = removeSortedVersionName(o.keys, key)
}

// empty reports whether the index has no orphans at all.
func (o *orphanIndex) empty() bool {
	return len(o.keys) == 0
}

// least returns the bucket key and the least orphan within it, in the same
// deterministic order Serialise/ReplaceRootFromOrphans rely on. It must not
// be called when empty() is true.
func (o *orphanIndex) least() (key VersionName, node *versionNode) {
	key = o.keys[0]
	return key, o.buckets[key][0]
}

func (o *orphanIndex) clear() {
	o.keys = nil
	o.buckets = make(map[VersionName][]*versionNode)
}

func insertSortedVersionNames(names []VersionName, name VersionName) []VersionName {
	idx := searchVersionNames(names, name)
	names = append(names, VersionName{})
	copy(names[idx+1:], names[idx:])
	names[idx] = name
	return names
}

func removeSortedVersionName(names []VersionName, name VersionName) ([]VersionName, bool) {
	idx := searchVersionNames(names, name)
	if idx >= len(names) || names[idx] != name {
		return names, false
	}
	return append(names[:idx], names[idx+1:]...), true
}

func searchVersionNames(names []VersionName, name VersionName) int {
	lo, hi := 0, len(names)
	for lo < hi {
		mid := (lo + hi) / 2
		if names[mid].Less(name) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
