// Package flow maps between the linear flow position space of a document
// and the physical fixed nodes of its pages.
//
// A FlowMap holds every flow node in one dense order; the flow position (Fp)
// of a node is its index in that order. Two boundary sentinels open and
// close the order. Pages start out as a single Virtual node each and are
// spliced in with MappingReplace once their content is built.
//
// Classified elements are indexed by their FixedNode so a physical address
// and character offset can be turned back into a flow node. A PageStructure
// keeps the per-page line table used for line navigation.
package flow
