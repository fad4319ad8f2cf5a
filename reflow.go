// Package reflow reconstructs the reading flow of fixed-layout documents.
// Glyph runs, paths and images positioned on fixed pages are grouped into
// lines, blocks and tables, ordered for reading and emitted as a flow tree
// whose positions map back to the physical primitives.
//
// Basic usage:
//
//	text, warnings, err := reflow.Open("document.xps").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", reflow.FormatWarnings(warnings))
//	}
//
// With options:
//
//	tables, _, err := reflow.Open("report.xps").
//	    Pages(1, 2, 3).
//	    Config(cfg).
//	    Tables()
//
// For position mapping, keep the Document open:
//
//	doc, _, err := reflow.Open("report.xps").Document()
//	if err != nil {
//	    // handle error
//	}
//	defer doc.Close()
//	pos, err := doc.FlowPosition(ctx, node, 0)
package reflow

// Open opens a fixed document package, either a directory or a zip
// archive, and returns an Extractor for fluent configuration. The source is
// closed by the terminal operation, except for Document, which hands it to
// the returned Document.
//
// Example:
//
//	text, warnings, err := reflow.Open("document.xps").Text()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromSource creates an Extractor over an already-opened page source.
// The caller is responsible for closing the source.
//
// Example:
//
//	src, err := markup.OpenFile("document.xps", nil)
//	if err != nil {
//	    // handle error
//	}
//	defer src.Close()
//	text, warnings, err := reflow.FromSource(src).Text()
func FromSource(src PageSource) *Extractor {
	e := &Extractor{
		source:  src,
		options: defaultOptions(),
	}
	if src == nil {
		e.err = ErrInvalidArgument
	}
	return e
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := reflow.Must(reflow.Open("document.xps").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a terminal operation returning warnings
// and panics if the error is non-nil. It discards the warnings.
//
// Example:
//
//	text := reflow.MustText(reflow.Open("document.xps").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
