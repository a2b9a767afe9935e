// Package depgraph implements the Step Dependency Analyzer: it partitions a
// Plan's steps into parallel-safe waves by symmetric file-overlap, grounded
// on the teacher's internal/executor/graph.go (BuildDependencyGraph,
// HasCycle's DFS color marking, CalculateWaves' Kahn's-algorithm level
// sets), adapted from strict DependsOn precedence to the spec's symmetric
// file-overlap relation while keeping the same greedy level-set structure.
package depgraph

import "github.com/harrison/kobold/internal/models"

// filesOf returns the union of a step's declared file sets.
func filesOf(s models.Step) map[string]bool {
	files := make(map[string]bool, len(s.FilesToCreate)+len(s.FilesToModify))
	for _, f := range s.FilesToCreate {
		files[f] = true
	}
	for _, f := range s.FilesToModify {
		files[f] = true
	}
	return files
}

func overlaps(a, b map[string]bool) bool {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for f := range small {
		if large[f] {
			return true
		}
	}
	return false
}

// CalculateWaves partitions steps into an ordered list of groups, each a
// set of step indices safe to run in parallel, using the greedy level-set
// algorithm from spec §4.5: a pass admits a step into the current group iff
// its files do not intersect the files already claimed by the group; when a
// pass admits nothing but steps remain, the first remaining step is
// force-promoted into its own singleton group (cycle fallback).
func CalculateWaves(steps []models.Step) [][]int {
	remaining := make([]int, len(steps))
	for i := range steps {
		remaining[i] = i
	}
	fileSets := make([]map[string]bool, len(steps))
	for i, s := range steps {
		fileSets[i] = filesOf(s)
	}

	var groups [][]int
	for len(remaining) > 0 {
		var group []int
		claimed := make(map[string]bool)
		var stillRemaining []int

		for _, idx := range remaining {
			if !overlaps(fileSets[idx], claimed) {
				group = append(group, idx)
				for f := range fileSets[idx] {
					claimed[f] = true
				}
			} else {
				stillRemaining = append(stillRemaining, idx)
			}
		}

		if len(group) == 0 {
			// Cycle fallback: force-promote the first remaining step alone.
			group = []int{stillRemaining[0]}
			stillRemaining = stillRemaining[1:]
		}

		groups = append(groups, group)
		remaining = stillRemaining
	}
	return groups
}

// color marks DFS visitation state for SuggestOptimalOrder's cycle
// detection, mirroring the teacher's white/gray/black scheme.
type color int

const (
	white color = iota
	gray
	black
)

// SuggestOptimalOrder performs a topological sort under the strict "B
// modifies what A creates ⇒ A before B" relation, silently skipping any
// step involved in a cycle under that relation rather than failing.
func SuggestOptimalOrder(steps []models.Step) []int {
	n := len(steps)
	createdBy := make(map[string]int) // file -> index of step that creates it

	for i, s := range steps {
		for _, f := range s.FilesToCreate {
			createdBy[f] = i
		}
	}

	// edges[i] = steps that must come after i (i creates a file step j modifies)
	edges := make([][]int, n)
	for j, s := range steps {
		for _, f := range s.FilesToModify {
			if i, ok := createdBy[f]; ok && i != j {
				edges[i] = append(edges[i], j)
			}
		}
	}

	colors := make([]color, n)
	var order []int
	var inCycle []bool = make([]bool, n)

	var visit func(i int) bool // returns false if a cycle was detected through i
	visit = func(i int) bool {
		colors[i] = gray
		ok := true
		for _, j := range edges[i] {
			switch colors[j] {
			case gray:
				ok = false
				inCycle[i] = true
				inCycle[j] = true
			case white:
				if !visit(j) {
					ok = false
					inCycle[i] = true
				}
			}
		}
		colors[i] = black
		if ok {
			order = append(order, i)
		}
		return ok
	}

	for i := 0; i < n; i++ {
		if colors[i] == white {
			visit(i)
		}
	}

	// order was built in post-order (dependents before dependencies); the
	// caller wants "A before B", so reverse it. Steps marked inCycle are
	// skipped per the "skip cycles silently" instruction.
	var result []int
	for k := len(order) - 1; k >= 0; k-- {
		if !inCycle[order[k]] {
			result = append(result, order[k])
		}
	}
	return result
}
