// Package planner grows a Rapidly-exploring Random Tree (RRT) from a start
// point toward a goal in a bounded plane with axis-aligned rectangular
// obstacles.
//
// Each iteration samples a point, finds the nearest tree node, steers from
// that node toward the sample by at most the step size, and inserts the new
// node unless the connecting segment collides with an obstacle. The run stops
// when a node lands within the goal radius or the iteration budget is spent.
//
// The tree is an append-only arena: nodes refer to their parent by index and
// a node's index is its insertion order. A Planner owns one tree per Run and
// is not safe for concurrent use; run independent planners for parallelism.
package planner
