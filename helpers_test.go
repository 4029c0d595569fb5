package vergraph

// nameAt builds a VersionName for tests: index paired with an ID of 64
// repeated copies of label, mirroring the original test fixture's
// Identity(std::string(64, 'a'))-style construction. label must be nonzero
// so the result never collides with the zero/uninitialized VersionName.
func nameAt(index uint64, label byte) VersionName {
	var v VersionName
	v.Index = index
	for i := range v.ID {
		v.ID[i] = label
	}
	return v
}

// diagramEdges returns the (parent, child) edges of the branching fixture
// used throughout the test suite:
//
//	  7-yyy       0-aaa
//	    |           |
//	  8-zzz       1-bbb
//	            /   |   \
//	       2-ccc  2-ddd  2-eee
//	         |       |       \
//	      3-fff   3-ggg    3-hhh
//	         |     /  \      /  \
//	      4-iii 4-jjj 4-kkk 4-lll 4-mmm
//	                    |
//	                  5-nnn
//
// (6,xxx) is never put; 7-yyy claims it as parent and so stays an orphan.
func diagramEdges() [][2]VersionName {
	var none VersionName
	aaa, bbb := nameAt(0, 'a'), nameAt(1, 'b')
	ccc, ddd, eee := nameAt(2, 'c'), nameAt(2, 'd'), nameAt(2, 'e')
	fff, ggg, hhh := nameAt(3, 'f'), nameAt(3, 'g'), nameAt(3, 'h')
	iii, jjj, kkk, lll, mmm := nameAt(4, 'i'), nameAt(4, 'j'), nameAt(4, 'k'), nameAt(4, 'l'), nameAt(4, 'm')
	nnn := nameAt(5, 'n')
	xxx := nameAt(6, 'x')
	yyy, zzz := nameAt(7, 'y'), nameAt(8, 'z')

	return [][2]VersionName{
		{none, aaa},
		{aaa, bbb},
		{bbb, ccc},
		{ccc, fff},
		{fff, iii},
		{bbb, ddd},
		{ddd, ggg},
		{ggg, jjj},
		{ggg, kkk},
		{kkk, nnn},
		{bbb, eee},
		{eee, hhh},
		{hhh, lll},
		{hhh, mmm},
		{xxx, yyy},
		{yyy, zzz},
	}
}

func buildDiagram(g *VersionGraph, edges [][2]VersionName) error {
	for _, e := range edges {
		if _, err := g.Put(e[0], e[1]); err != nil {
			return err
		}
	}
	return nil
}
