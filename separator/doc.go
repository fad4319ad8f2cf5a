// Package separator records rule lines drawn on a page and answers whether a
// region is divided by one.
//
// Lines are kept per orientation as entries sorted by their coordinate. Lines
// closer than half the minimum separation share an entry, whose intervals are
// kept sorted and coalesced:
//
//	lc := separator.NewLineCollection()
//	lc.AddVertical(55, -2, 12)
//	lc.IsVerticallySeparated(model.NewBBoxLTRB(50, 0, 60, 10)) // true
//
// A query succeeds when a line lies inside the query's parallel span and one
// interval covers the perpendicular span, shrunk at both ends by the fudge
// factor.
package separator
