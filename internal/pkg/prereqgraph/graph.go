// Package prereqgraph holds the course prerequisite relation as an
// identifier-indexed adjacency map. An edge course -> prerequisite means the
// course requires the prerequisite. The relation must stay acyclic; callers ask
// WouldCreateCycle before persisting a new edge.
package prereqgraph

import "sort"

// Edge is a single course -> prerequisite relationship.
type Edge struct {
	CourseID       int64 `json:"courseId" db:"course_id"`
	PrerequisiteID int64 `json:"prerequisiteId" db:"prerequisite_id"`
}

// Graph is the prerequisite adjacency. The zero value is not usable, call New.
// A built Graph is safe for concurrent reads.
type Graph struct {
	prerequisites map[int64][]int64
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{prerequisites: make(map[int64][]int64)}
}

// FromEdges builds a graph from stored edges. Duplicate edges are collapsed.
func FromEdges(edges []Edge) *Graph {
	g := New()
	for _, e := range edges {
		g.AddEdge(e.CourseID, e.PrerequisiteID)
	}
	return g
}

// AddEdge records that courseID requires prerequisiteID. It does not check for
// cycles; that is the caller's job.
func (g *Graph) AddEdge(courseID, prerequisiteID int64) {
	for _, existing := range g.prerequisites[courseID] {
		if existing == prerequisiteID {
			return
		}
	}
	g.prerequisites[courseID] = append(g.prerequisites[courseID], prerequisiteID)
}

// Prerequisites returns the direct prerequisites of courseID.
func (g *Graph) Prerequisites(courseID int64) []int64 {
	out := make([]int64, len(g.prerequisites[courseID]))
	copy(out, g.prerequisites[courseID])
	return out
}

// WouldCreateCycle reports whether adding courseID -> candidateID closes a cycle,
// i.e. whether courseID is already reachable from candidateID. Identifiers <= 0
// stand for courses that are not persisted yet and can never close a cycle.
func (g *Graph) WouldCreateCycle(courseID, candidateID int64) bool {
	if courseID <= 0 || candidateID <= 0 {
		return false
	}
	if courseID == candidateID {
		return true
	}
	return g.Reachable(candidateID, courseID)
}

// Reachable reports whether to can be reached from from by following
// prerequisite edges. The visited set bounds the walk to one visit per course
// even on shared sub-prerequisites or malformed (already cyclic) data.
func (g *Graph) Reachable(from, to int64) bool {
	visited := make(map[int64]struct{})
	stack := []int64{from}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == to {
			return true
		}
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		for _, next := range g.prerequisites[current] {
			if _, seen := visited[next]; !seen {
				stack = append(stack, next)
			}
		}
	}

	return false
}

// TransitivePrerequisites returns every course reachable from courseID, sorted
// ascending. courseID itself is not included.
func (g *Graph) TransitivePrerequisites(courseID int64) []int64 {
	visited := map[int64]struct{}{courseID: {}}
	stack := append([]int64(nil), g.prerequisites[courseID]...)
	out := []int64{}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		out = append(out, current)
		stack = append(stack, g.prerequisites[current]...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasCycle reports whether the relation already contains a cycle. Edges written
// outside the service layer can bypass WouldCreateCycle.
func (g *Graph) HasCycle() bool {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[int64]int, len(g.prerequisites))

	var visit func(id int64) bool
	visit = func(id int64) bool {
		switch state[id] {
		case inProgress:
			return true
		case done:
			return false
		}
		state[id] = inProgress
		for _, next := range g.prerequisites[id] {
			if visit(next) {
				return true
			}
		}
		state[id] = done
		return false
	}

	for id := range g.prerequisites {
		if state[id] == unvisited && visit(id) {
			return true
		}
	}
	return false
}
