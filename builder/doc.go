// Package builder emits the flow element tree of a page and fills the flow
// map while doing so.
//
// Pages carrying structural hints are built by walking the hints; pages
// without them are built from the reconstructed object model. Either way
// every classified element of the page ends up in exactly one flow node:
// whatever the walk misses is swept into a trailing paragraph.
package builder
