// Package graphicsstate tracks the transform stack while walking a fixed
// page and interprets vector path geometry into rule lines and filled
// rectangles.
//
// # Graphics State
//
// GraphicsState holds the CTM (current transformation matrix) composed from
// the render transforms of enclosing canvases:
//
//	gs := graphicsstate.NewGraphicsState()
//	gs.Save()                          // entering a canvas
//	gs.Transform(canvas.RenderTransform)
//	gs.Restore()                       // leaving it
//
// # Page Walking
//
// [WalkPage] visits every primitive of a page in markup order with its
// [model.FixedNode] address and page-space transform.
//
// # Path Geometry
//
// [Walker] interprets path figures made of line and polyline segments:
//   - stroked figures yield axis-aligned [Segment] values
//   - filled figures yield their bounding box once closed
//
// Any curve in a path disables both classifications for that path. Events
// are delivered to a [Sink]; [Collector] gathers them into slices.
package graphicsstate
