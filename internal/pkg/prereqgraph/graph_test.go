package prereqgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWouldCreateCycle(t *testing.T) {
	t.Run("self loop is always a cycle", func(t *testing.T) {
		g := New()
		assert.True(t, g.WouldCreateCycle(7, 7))

		g.AddEdge(1, 2)
		assert.True(t, g.WouldCreateCycle(1, 1))
		assert.True(t, g.WouldCreateCycle(2, 2))
	})

	t.Run("unpersisted ids never cycle", func(t *testing.T) {
		g := FromEdges([]Edge{{CourseID: 1, PrerequisiteID: 2}})
		assert.False(t, g.WouldCreateCycle(0, 1))
		assert.False(t, g.WouldCreateCycle(1, 0))
		assert.False(t, g.WouldCreateCycle(0, 0))
		assert.False(t, g.WouldCreateCycle(-1, -1))
	})

	t.Run("direct reverse edge is a cycle", func(t *testing.T) {
		// A(1) requires B(2); making B require A closes the loop.
		g := FromEdges([]Edge{{CourseID: 1, PrerequisiteID: 2}})
		assert.True(t, g.WouldCreateCycle(2, 1))
		assert.False(t, g.WouldCreateCycle(1, 2), "re-adding an existing edge is not a cycle")
	})

	t.Run("long chain", func(t *testing.T) {
		g := FromEdges([]Edge{
			{CourseID: 1, PrerequisiteID: 2},
			{CourseID: 2, PrerequisiteID: 3},
			{CourseID: 3, PrerequisiteID: 4},
		})
		assert.True(t, g.WouldCreateCycle(4, 1))
		assert.True(t, g.WouldCreateCycle(3, 1))
		assert.False(t, g.WouldCreateCycle(1, 4))
		assert.False(t, g.WouldCreateCycle(5, 1))
	})

	t.Run("candidate without prerequisites", func(t *testing.T) {
		g := FromEdges([]Edge{{CourseID: 1, PrerequisiteID: 2}})
		assert.False(t, g.WouldCreateCycle(1, 9))
	})

	t.Run("reachable through a non-first branch", func(t *testing.T) {
		// 10 requires 11 and 12; only 12 leads back to 1.
		g := FromEdges([]Edge{
			{CourseID: 10, PrerequisiteID: 11},
			{CourseID: 10, PrerequisiteID: 12},
			{CourseID: 11, PrerequisiteID: 13},
			{CourseID: 12, PrerequisiteID: 1},
		})
		assert.True(t, g.WouldCreateCycle(1, 10))
	})

	t.Run("malformed cyclic data terminates", func(t *testing.T) {
		g := FromEdges([]Edge{
			{CourseID: 1, PrerequisiteID: 2},
			{CourseID: 2, PrerequisiteID: 1},
		})
		assert.False(t, g.WouldCreateCycle(5, 1))
		assert.True(t, g.WouldCreateCycle(1, 2))
	})
}

func TestWouldCreateCycleMatchesReachability(t *testing.T) {
	// Diamond with shared sub-prerequisites.
	edges := []Edge{
		{CourseID: 1, PrerequisiteID: 2},
		{CourseID: 1, PrerequisiteID: 3},
		{CourseID: 2, PrerequisiteID: 4},
		{CourseID: 3, PrerequisiteID: 4},
		{CourseID: 4, PrerequisiteID: 5},
		{CourseID: 6, PrerequisiteID: 5},
	}
	g := FromEdges(edges)

	for a := int64(1); a <= 7; a++ {
		for b := int64(1); b <= 7; b++ {
			expected := a == b || g.Reachable(b, a)
			assert.Equal(t, expected, g.WouldCreateCycle(a, b), "edge %d -> %d", a, b)

			// Adding the edge must produce a cycle exactly when the check said so.
			extended := FromEdges(append(append([]Edge(nil), edges...), Edge{CourseID: a, PrerequisiteID: b}))
			assert.Equal(t, expected, extended.HasCycle(), "graph with %d -> %d", a, b)
		}
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	g.AddEdge(1, 2)
	g.AddEdge(1, 2)
	g.AddEdge(1, 3)
	require.Equal(t, []int64{2, 3}, g.Prerequisites(1))
	assert.Empty(t, g.Prerequisites(99))
}

func TestTransitivePrerequisites(t *testing.T) {
	g := FromEdges([]Edge{
		{CourseID: 1, PrerequisiteID: 3},
		{CourseID: 1, PrerequisiteID: 2},
		{CourseID: 2, PrerequisiteID: 4},
		{CourseID: 3, PrerequisiteID: 4},
		{CourseID: 4, PrerequisiteID: 5},
	})

	if diff := cmp.Diff([]int64{2, 3, 4, 5}, g.TransitivePrerequisites(1)); diff != "" {
		t.Errorf("TransitivePrerequisites(1) mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, g.TransitivePrerequisites(5))
}

func TestHasCycle(t *testing.T) {
	assert.False(t, New().HasCycle())
	assert.False(t, FromEdges([]Edge{{1, 2}, {2, 3}, {1, 3}}).HasCycle())
	assert.True(t, FromEdges([]Edge{{1, 2}, {2, 3}, {3, 1}}).HasCycle())
	assert.True(t, FromEdges([]Edge{{4, 4}}).HasCycle())
}
