package reflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/reflow/builder"
	"github.com/tsawler/reflow/markup"
	"github.com/tsawler/reflow/som"
)

// PageTable is a table detected on a page
type PageTable struct {
	// Page is 1-indexed
	Page  int
	Table *som.Table
}

// Extractor provides a fluent interface for reflowing fixed documents.
// Each configuration method returns a new Extractor instance, making it
// safe for concurrent use and allowing method chaining.
type Extractor struct {
	// Source
	filename string
	source   PageSource

	// Lifecycle
	ownsSource bool // true if we opened the source and should close it

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:   e.filename,
		source:     e.source,
		ownsSource: e.ownsSource,
		options:    e.options.clone(),
		err:        e.err,
	}
}

// ensureSource opens the document if not already open
func (e *Extractor) ensureSource() error {
	if e.source != nil {
		return nil
	}
	if e.filename == "" {
		return fmt.Errorf("%w: no filename specified", ErrInvalidArgument)
	}
	doc, err := markup.OpenFile(e.filename, e.options.logger)
	if err != nil {
		return err
	}
	e.source = doc
	e.ownsSource = true
	return nil
}

// Close releases the source when the Extractor opened it.
// It is safe to call Close multiple times.
func (e *Extractor) Close() error {
	if !e.ownsSource {
		return nil
	}
	e.ownsSource = false
	src := e.source
	e.source = nil
	if c, ok := src.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Pages specifies which pages to process (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	text, _, err := reflow.Open("doc.xps").Pages(1, 3, 5).Text()
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append(newExt.options.pages, pages...)
	return newExt
}

// PageRange specifies a range of pages to process (1-indexed, inclusive)
func (e *Extractor) PageRange(start, end int) *Extractor {
	newExt := e.clone()
	for i := start; i <= end; i++ {
		newExt.options.pages = append(newExt.options.pages, i)
	}
	return newExt
}

// Config replaces the construction thresholds. An invalid configuration is
// reported by the terminal operation.
//
// Example:
//
//	cfg, err := reflow.LoadConfig("reflow.yaml")
//	if err != nil {
//	    // handle error
//	}
//	tables, _, err := reflow.Open("doc.xps").Config(cfg).Tables()
func (e *Extractor) Config(cfg Config) *Extractor {
	newExt := e.clone()
	if err := cfg.Validate(); err != nil && newExt.err == nil {
		newExt.err = err
	}
	newExt.options.config = cfg
	return newExt
}

// Logger sets the logger handed to every stage. Without one the stages log
// nothing.
func (e *Extractor) Logger(l logrus.FieldLogger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = l
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// PageCount returns the number of pages in the document
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if err := e.ensureSource(); err != nil {
		return 0, err
	}
	defer e.Close()
	return e.source.PageCount(), nil
}

// Document opens the document and builds the selected pages. Pages that
// fail to build stay virtual and are reported as warnings. The caller must
// close the returned Document, which takes over the source opened by Open.
func (e *Extractor) Document() (*Document, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}
	if err := e.ensureSource(); err != nil {
		return nil, nil, err
	}

	doc, err := newDocument(e.source, e.ownsSource, e.options.config, e.options.logger)
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	e.ownsSource = false
	e.source = nil

	_, warnings, err := e.build(doc)
	if err != nil {
		doc.Close()
		return nil, nil, err
	}
	return doc, warnings, nil
}

// Text returns the text of the flow trees of the selected pages, pages
// separated by a blank line.
//
// Example:
//
//	text, warnings, err := reflow.Open("doc.xps").Text()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", reflow.FormatWarnings(warnings))
//	}
func (e *Extractor) Text() (string, []Warning, error) {
	roots, warnings, err := e.Flow()
	if err != nil {
		return "", nil, err
	}
	texts := make([]string, 0, len(roots))
	for _, r := range roots {
		if t := r.Text(); t != "" {
			texts = append(texts, t)
		}
	}
	return strings.Join(texts, "\n\n"), warnings, nil
}

// Flow returns the flow trees of the selected pages in page order
func (e *Extractor) Flow() ([]*builder.FlowElement, []Warning, error) {
	doc, err := e.transient()
	if err != nil {
		return nil, nil, err
	}
	defer e.Close()
	defer doc.Close()

	built, warnings, err := e.build(doc)
	if err != nil {
		return nil, nil, err
	}
	roots := make([]*builder.FlowElement, 0, len(built))
	for _, i := range built {
		roots = append(roots, doc.roots[i])
	}
	return roots, warnings, nil
}

// Tables returns the tables of the selected pages in reading order
func (e *Extractor) Tables() ([]PageTable, []Warning, error) {
	doc, err := e.transient()
	if err != nil {
		return nil, nil, err
	}
	defer e.Close()
	defer doc.Close()

	built, warnings, err := e.build(doc)
	if err != nil {
		return nil, nil, err
	}
	var tables []PageTable
	for _, i := range built {
		for _, t := range doc.pages[i].Page.Tables() {
			tables = append(tables, PageTable{Page: i + 1, Table: t})
		}
	}
	return tables, warnings, nil
}

// transient opens a document that does not own the source
func (e *Extractor) transient() (*Document, error) {
	if e.err != nil {
		return nil, e.err
	}
	if err := e.ensureSource(); err != nil {
		return nil, err
	}
	doc, err := newDocument(e.source, false, e.options.config, e.options.logger)
	if err != nil {
		e.Close()
		return nil, err
	}
	return doc, nil
}

// build ensures the selected pages and returns the ones that were built
func (e *Extractor) build(doc *Document) ([]int, []Warning, error) {
	pageIndices, err := e.resolvePages(doc.PageCount())
	if err != nil {
		return nil, nil, err
	}

	ctx := context.Background()
	var built []int
	var warnings []Warning
	for _, i := range pageIndices {
		if _, err := doc.EnsurePage(ctx, i); err != nil {
			if errors.Is(err, ErrPageRange) {
				return nil, nil, err
			}
			warnings = append(warnings, Warning{Page: i + 1, Message: err.Error()})
			continue
		}
		built = append(built, i)
	}
	return built, warnings, nil
}

// resolvePages converts the 1-indexed page selection to sorted, distinct
// 0-indexed pages
func (e *Extractor) resolvePages(pageCount int) ([]int, error) {
	// If no pages specified, use all pages
	if len(e.options.pages) == 0 {
		pageIndices := make([]int, pageCount)
		for i := 0; i < pageCount; i++ {
			pageIndices[i] = i
		}
		return pageIndices, nil
	}

	// Convert 1-indexed to 0-indexed and validate
	seen := make(map[int]bool)
	var pageIndices []int
	for _, p := range e.options.pages {
		if p < 1 || p > pageCount {
			return nil, fmt.Errorf("%w: page %d (1-%d)", ErrPageRange, p, pageCount)
		}
		zeroIndexed := p - 1
		if !seen[zeroIndexed] {
			seen[zeroIndexed] = true
			pageIndices = append(pageIndices, zeroIndexed)
		}
	}

	sort.Ints(pageIndices)
	return pageIndices, nil
}
