// Package som builds the semantic object model of a fixed page.
//
// A PageConstructor walks the primitives of a page, classifies glyph runs
// and images into elements, collects rule lines from stroked and filled
// paths, clusters text runs into line blocks and recognises tables from rule
// grids. Every container is then sorted into reading order with
// CompareBoxes, which honours the majority direction of its content.
//
// Basic usage:
//
//	pc := som.NewPageConstructor()
//	page, err := pc.Construct(fixedPage, 0)
//	if err != nil {
//	    return err
//	}
//	for _, b := range page.Blocks() {
//	    fmt.Println(b.Text())
//	}
package som
