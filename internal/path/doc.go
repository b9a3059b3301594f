// Package path models the walks that pruning specifications describe through
// a tree: an ordered list of elements, each either a map field name or the
// wildcard marker meaning "every element of the sequence here".
//
// Paths have a string form, elements joined by a separator (default "."),
// with the wildcard written as a reserved token (default "[]"):
//
//	Reservations.[].Instances.[].InstanceId
//
// The string and element forms convert losslessly. To keep that guarantee,
// field names equal to the wildcard token, containing the separator, or empty
// are rejected when a path is normalized.
package path
