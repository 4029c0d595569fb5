package vergraph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPut_LinearChainHasSingleTip(t *testing.T) {
	g, err := New(100, 10)
	require.NoError(t, err)

	var parent VersionName
	var last VersionName
	for i := uint64(0); i < 100; i++ {
		child := nameAt(i, byte('A'+i%26))
		_, err := g.Put(parent, child)
		require.NoError(t, err)
		parent = child
		last = child
	}

	assert.Equal(t, []VersionName{last}, g.Get())

	branch, err := g.GetBranch(last)
	require.NoError(t, err)
	assert.Len(t, branch, 100)
	assert.Equal(t, last, branch[0])
}

func TestPut_BranchingTree(t *testing.T) {
	g, err := New(1000, 100)
	require.NoError(t, err)

	var parent VersionName
	for i := uint64(0); i < 100; i++ {
		child := nameAt(i, byte('A'+i%26))
		_, err := g.Put(parent, child)
		require.NoError(t, err)
		parent = child
	}

	anchors := []uint64{20, 40, 60, 80, 99}
	var branchTips []VersionName
	for bi, anchorIdx := range anchors {
		old, err := g.GetBranch(parent)
		require.NoError(t, err)
		var anchor VersionName
		for _, v := range old {
			if v.Index == anchorIdx {
				anchor = v
				break
			}
		}
		require.True(t, anchor.IsInitialized())

		for offshoot := 0; offshoot < 3; offshoot++ {
			cur := anchor
			for step := uint64(1); step <= 20; step++ {
				next := nameAt(anchorIdx+step, byte('a'+bi*3+offshoot))
				_, err := g.Put(cur, next)
				require.NoError(t, err)
				cur = next
			}
			branchTips = append(branchTips, cur)
		}
	}

	tips := g.Get()
	seen := make(map[VersionName]bool, len(tips))
	for _, tip := range tips {
		assert.False(t, seen[tip], "duplicate tip %+v", tip)
		seen[tip] = true
	}
	for _, bt := range branchTips {
		assert.True(t, seen[bt], "expected offshoot tip %+v to be reachable", bt)
		_, err := g.GetBranch(bt)
		assert.NoError(t, err)
	}
}

func TestPut_OrphanDeliveryOutOfOrder(t *testing.T) {
	edges := diagramEdges()
	shuffled := append([][2]VersionName(nil), edges...)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	g, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(g, shuffled))

	want := []VersionName{
		nameAt(4, 'i'), nameAt(4, 'j'), nameAt(4, 'l'), nameAt(4, 'm'),
		nameAt(5, 'n'), nameAt(8, 'z'),
	}
	got := g.Get()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i])
	}

	branch, err := g.GetBranch(nameAt(8, 'z'))
	require.NoError(t, err)
	assert.Equal(t, []VersionName{nameAt(8, 'z'), nameAt(7, 'y')}, branch)
}

func TestSerialise_OrderIndependentForSameDAG(t *testing.T) {
	edges := diagramEdges()

	g1, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(g1, edges))

	reordered := append([][2]VersionName(nil), edges...)
	rand.New(rand.NewSource(7)).Shuffle(len(reordered), func(i, j int) {
		reordered[i], reordered[j] = reordered[j], reordered[i]
	})
	g2, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(g2, reordered))

	b1, err := g1.Serialise()
	require.NoError(t, err)
	b2, err := g2.Serialise()
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
	assert.True(t, g1.Equal(g2))
}

func TestSerialise_RoundTripsThroughFromBytes(t *testing.T) {
	edges := diagramEdges()
	g, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(g, edges))

	data, err := g.Serialise()
	require.NoError(t, err)

	restored, err := FromBytes(data)
	require.NoError(t, err)
	assert.True(t, g.Equal(restored))

	data2, err := restored.Serialise()
	require.NoError(t, err)
	assert.Equal(t, data, data2)
}

func TestApplySerialised_MergesDisjointFragment(t *testing.T) {
	edges := diagramEdges()
	split := len(edges) - 2 // last two edges are (xxx->yyy), (yyy->zzz)

	g, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(g, edges[:split]))

	h, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(h, edges[split:]))

	full, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(full, edges))

	hBytes, err := h.Serialise()
	require.NoError(t, err)
	require.NoError(t, g.ApplySerialised(hBytes))

	assert.True(t, g.Equal(full))
}

func TestApplySerialised_IsSymmetric(t *testing.T) {
	edges := diagramEdges()
	split := len(edges) - 2

	a, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(a, edges[:split]))
	b, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(b, edges[split:]))

	aBytes, err := a.Serialise()
	require.NoError(t, err)
	require.NoError(t, b.ApplySerialised(aBytes))

	full, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(full, edges))

	assert.True(t, b.Equal(full))
}

func TestDeleteBranchUntilFork_StopsAtFork(t *testing.T) {
	g, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(g, diagramEdges()))

	require.NoError(t, g.DeleteBranchUntilFork(nameAt(5, 'n')))

	_, existsNNN := g.versions[nameAt(5, 'n')]
	_, existsKKK := g.versions[nameAt(4, 'k')]
	assert.False(t, existsNNN)
	assert.False(t, existsKKK)

	ggg := g.versions[nameAt(3, 'g')]
	require.NotNil(t, ggg)
	idx, found := searchNodes(ggg.children, nameAt(4, 'j'))
	assert.True(t, found)
	assert.Equal(t, nameAt(4, 'j'), ggg.children[idx].name)
}

func TestDeleteBranchUntilFork_UnknownNameFails(t *testing.T) {
	g, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(g, diagramEdges()))

	err = g.DeleteBranchUntilFork(nameAt(50, 'q'))
	assert.Equal(t, NoSuchElement, KindOf(err))
}

func TestDeleteBranchUntilFork_NonTipNameFails(t *testing.T) {
	g, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(g, diagramEdges()))

	err = g.DeleteBranchUntilFork(nameAt(3, 'g'))
	assert.Equal(t, InvalidParameter, KindOf(err))
}

func TestPut_CapacityEvictsOriginalRoot(t *testing.T) {
	g, err := New(3, 10)
	require.NoError(t, err)

	var parent VersionName
	var evicted *VersionName
	var names []VersionName
	for i := uint64(0); i < 4; i++ {
		child := nameAt(i, byte('a'+i))
		names = append(names, child)
		ev, err := g.Put(parent, child)
		require.NoError(t, err)
		if i == 3 {
			evicted = ev
		}
		parent = child
	}

	require.NotNil(t, evicted)
	assert.Equal(t, names[0], *evicted)
	assert.Len(t, g.versions, 3)
	assert.Equal(t, names[1], g.root.name)
}

func TestPut_IdempotentReplayIsNoop(t *testing.T) {
	g, err := New(100, 20)
	require.NoError(t, err)
	var none VersionName
	a := nameAt(0, 'a')
	_, err = g.Put(none, a)
	require.NoError(t, err)

	ev, err := g.Put(none, a)
	assert.NoError(t, err)
	assert.Nil(t, ev)
}

func TestPut_ReplayWithDifferentParentFails(t *testing.T) {
	g, err := New(100, 20)
	require.NoError(t, err)
	var none VersionName
	a := nameAt(0, 'a')
	b := nameAt(1, 'b')
	_, err = g.Put(none, a)
	require.NoError(t, err)
	_, err = g.Put(a, b)
	require.NoError(t, err)

	_, err = g.Put(none, b)
	assert.Equal(t, InvalidParameter, KindOf(err))
}

func TestNew_RejectsZeroLimits(t *testing.T) {
	_, err := New(0, 10)
	assert.Equal(t, InvalidParameter, KindOf(err))

	_, err = New(10, 0)
	assert.Equal(t, InvalidParameter, KindOf(err))
}

func TestClear_EmptiesGraph(t *testing.T) {
	g, err := New(100, 20)
	require.NoError(t, err)
	require.NoError(t, buildDiagram(g, diagramEdges()))

	g.Clear()
	assert.Empty(t, g.Get())
	assert.Empty(t, g.versions)
}
