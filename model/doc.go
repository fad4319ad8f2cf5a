// Package model provides the in-memory representation of fixed-layout pages
// consumed by the reconstruction engine.
//
// # Geometry
//
// Geometric primitives support position and layout calculations:
//
//   - [BBox] - bounding box with union, intersection and containment; Y grows
//     downward and [EmptyBBox] is the identity element of union
//   - [Point] - 2D point with distance calculation
//   - [Matrix] - 2D affine transformation matrix
//
// # Physical addresses
//
// A [FixedNode] identifies a primitive by page index and child-index path:
//
//	n := model.NewFixedNode(0, 2, 1) // page 0, third child, its second child
//	n.Compare(model.DocumentEnd())   // -1
//
// # Page content
//
// A [Page] holds a tree of [Node] values: [Canvas] groups, [Glyphs] runs and
// [Path] drawings. Optional [Structure] hints describe the declared logical
// structure through named element references.
package model
