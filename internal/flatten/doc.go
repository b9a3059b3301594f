// Package flatten converts nested trees into flat records.
//
// Maps expand into the cartesian product of their children's records, so two
// sibling sequences of n and m maps produce n*m rows, while the elements of a
// single sequence of maps are concatenated. Record keys are the paths of the
// leaves joined by a separator, without sequence positions:
//
//	{"a": [{"x": 1}, {"x": 2}], "b": {"y": 3}}
//
// flattens to
//
//	{"a.x": 1, "b.y": 3}
//	{"a.x": 2, "b.y": 3}
//
// Sequences of scalars are kept as a single list-valued field unless leaf
// flattening is enabled for their prefix, in which case each element becomes
// its own record.
package flatten
