// Package prune extracts the parts of a tree addressed by a set of path
// specifications.
//
// All specifications are matched in a single descent. At depth d a
// specification whose path has d elements finishes: the node becomes its
// matched value. At most one specification may finish per node. On a
// sequence every running specification must continue with the wildcard; on
// a map, specifications whose next field is absent are dropped for that
// branch.
package prune
