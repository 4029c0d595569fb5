package vergraph

// wireVersionName is the on-the-wire twin of VersionName, used wherever the
// format calls for an optional VersionName (a branch's absent parent).
type wireVersionName struct {
	Index uint64 `msgpack:"index"`
	ID    []byte `msgpack:"id"`
}

// wireVersionBlob is one entry in a wireBranch's Names array.
// ForkingChildCount is present only when the version it describes forks;
// its absence means this blob terminates its branch.
type wireVersionBlob struct {
	Index             uint64  `msgpack:"index"`
	ID                []byte  `msgpack:"id"`
	ForkingChildCount *uint32 `msgpack:"forking_child_count,omitempty"`
}

// wireBranch is a single root-to-tip (or root-to-fork) run of versions.
type wireBranch struct {
	AbsentParent *wireVersionName  `msgpack:"absent_parent,omitempty"`
	Names        []wireVersionBlob `msgpack:"names"`
}

// wireGraph is the top-level StructuredDataVersions wire layout of
// spec.md §6.
type wireGraph struct {
	MaxVersions uint32       `msgpack:"max_versions"`
	MaxBranches uint32       `msgpack:"max_branches"`
	Branches    []wireBranch `msgpack:"branches"`
}

func toWireVersionName(v VersionName) *wireVersionName {
	id := make([]byte, IDSize)
	copy(id, v.ID[:])
	return &wireVersionName{Index: v.Index, ID: id}
}

func fromWireVersionName(wv *wireVersionName) (VersionName, error) {
	if wv == nil {
		return VersionName{}, nil
	}
	if len(wv.ID) != IDSize && len(wv.ID) != 0 {
		return VersionName{}, newError(ParsingError, "version name id must be %d bytes, got %d", IDSize, len(wv.ID))
	}
	var name VersionName
	name.Index = wv.Index
	copy(name.ID[:], wv.ID)
	return name, nil
}

func fromWireBlob(blob wireVersionBlob) (VersionName, error) {
	if len(blob.ID) != IDSize {
		return VersionName{}, newError(ParsingError, "version id must be exactly %d bytes, got %d", IDSize, len(blob.ID))
	}
	var name VersionName
	name.Index = blob.Index
	copy(name.ID[:], blob.ID)
	return name, nil
}
