package reflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/reflow/builder"
	"github.com/tsawler/reflow/dispatch"
	"github.com/tsawler/reflow/flow"
	"github.com/tsawler/reflow/internal/logging"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/search"
	"github.com/tsawler/reflow/sequence"
	"github.com/tsawler/reflow/som"
)

var (
	// ErrInvalidArgument is returned for nil sources and malformed addresses
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPageRange is returned for page indices outside the document
	ErrPageRange = errors.New("page out of range")
)

// PageSource supplies the fixed pages of a document. *markup.Document is
// the file-backed implementation.
type PageSource interface {
	PageCount() int
	LoadPage(ctx context.Context, index int) (*model.Page, error)
}

// linkSource is implemented by sources that resolve named link targets
type linkSource interface {
	LinkTarget(name string) (int, bool)
}

// Position is a flow position and the character offset inside its node
type Position struct {
	Fp     int
	Offset int
}

// Match is a search hit: the 0-indexed page and the character range in the
// page's logical text
type Match struct {
	Page int
	search.Range
}

// Document is the reflowed view of a fixed document. Pages start as virtual
// placeholders in the flow order and are constructed and built on first
// use. Page indices are 0-based. A Document is safe for concurrent use.
type Document struct {
	source     PageSource
	ownsSource bool
	config     Config
	logger     logrus.FieldLogger

	constructor *som.PageConstructor
	builder     *builder.Builder
	dispatcher  *dispatch.Dispatcher

	mu     sync.Mutex
	flow   *flow.FlowMap
	pages  []*flow.PageStructure
	roots  []*builder.FlowElement
	failed []error

	text    sequence.StringContainer
	hasText bool
	closed  bool
}

// NewDocument creates a document over src. The caller keeps ownership of
// src and closes it after the document.
func NewDocument(src PageSource, config Config, logger logrus.FieldLogger) (*Document, error) {
	return newDocument(src, false, config, logger)
}

func newDocument(src PageSource, owns bool, config Config, logger logrus.FieldLogger) (*Document, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil page source", ErrInvalidArgument)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger = logging.OrDiscard(logger)

	m := flow.NewFlowMap()
	virtual, err := m.InitVirtual(src.PageCount())
	if err != nil {
		return nil, err
	}
	pages := make([]*flow.PageStructure, len(virtual))
	for i, id := range virtual {
		pages[i] = flow.NewPageStructure(i, id)
	}

	return &Document{
		source:      src,
		ownsSource:  owns,
		config:      config,
		logger:      logger,
		constructor: som.NewPageConstructorWithConfig(config.Construction, logger),
		builder:     builder.New(logger),
		dispatcher:  dispatch.NewDispatcher(logger),
		flow:        m,
		pages:       pages,
		roots:       make([]*builder.FlowElement, len(pages)),
		failed:      make([]error, len(pages)),
	}, nil
}

// Close stops the document's dispatcher and closes the source when the
// document owns it. It is safe to call Close more than once.
func (d *Document) Close() error {
	d.dispatcher.Close()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if c, ok := d.source.(io.Closer); ok && d.ownsSource {
		return c.Close()
	}
	return nil
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.pages)
}

// FlowCount returns the number of nodes in the flow order, boundaries
// included
func (d *Document) FlowCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flow.Count()
}

// IsBuilt reports whether a page has replaced its virtual placeholder
func (d *Document) IsBuilt(page int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return page >= 0 && page < len(d.roots) && d.roots[page] != nil
}

// EnsurePage builds a page if it is still virtual and returns the root of
// its flow tree. Load and construction failures are remembered; the page
// keeps its placeholder.
func (d *Document) EnsurePage(ctx context.Context, page int) (*builder.FlowElement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensure(ctx, page)
}

func (d *Document) ensure(ctx context.Context, i int) (*builder.FlowElement, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrPageRange, i, len(d.pages))
	}
	if root := d.roots[i]; root != nil {
		return root, nil
	}
	if err := d.failed[i]; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := d.source.LoadPage(ctx, i)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, d.fail(i, fmt.Errorf("load page %d: %w", i+1, err))
	}
	page, err := d.constructor.Construct(src, i)
	if err != nil {
		return nil, d.fail(i, fmt.Errorf("construct page %d: %w", i+1, err))
	}
	root, err := d.builder.BuildPage(d.pages[i], page, d.flow)
	if err != nil {
		return nil, d.fail(i, fmt.Errorf("build page %d: %w", i+1, err))
	}
	d.roots[i] = root
	return root, nil
}

func (d *Document) fail(i int, err error) error {
	d.failed[i] = err
	d.logger.WithField("page", i).WithError(err).Warn("page left virtual")
	return err
}

func (d *Document) ensureAll(ctx context.Context) {
	for i := range d.pages {
		if _, err := d.ensure(ctx, i); err != nil && ctx.Err() != nil {
			return
		}
	}
}

// LoadPageAsync builds a page on the document's dispatcher. Completion
// callbacks run on the dispatcher.
func (d *Document) LoadPageAsync(page int) *dispatch.Operation[*builder.FlowElement] {
	return dispatch.Begin(d.dispatcher, func(ctx context.Context) (*builder.FlowElement, error) {
		return d.EnsurePage(ctx, page)
	})
}

// Page returns the constructed object model of a page
func (d *Document) Page(ctx context.Context, page int) (*som.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.ensure(ctx, page); err != nil {
		return nil, err
	}
	return d.pages[page].Page, nil
}

// Elements returns the classified elements of a page in markup order
func (d *Document) Elements(ctx context.Context, page int) ([]som.Element, error) {
	p, err := d.Page(ctx, page)
	if err != nil {
		return nil, err
	}
	return p.Elements(), nil
}

// PageText returns the text of a page in reading order. With restoreRTL
// set, runs stored in visual order are returned in logical order.
func (d *Document) PageText(ctx context.Context, page int, restoreRTL bool) (string, error) {
	p, err := d.Page(ctx, page)
	if err != nil {
		return "", err
	}
	return search.PageText(p, restoreRTL), nil
}

// FlowPosition maps a physical address and a character offset to a flow
// position, building the page first if needed. The document sentinels map
// to the boundary positions and the page sentinels to the page's first and
// last flow positions.
func (d *Document) FlowPosition(ctx context.Context, node model.FixedNode, offset int) (Position, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch node {
	case model.DocumentStart():
		return Position{Fp: 0}, nil
	case model.DocumentEnd():
		return Position{Fp: d.flow.Count() - 1}, nil
	}

	p := node.Page()
	if _, err := d.ensure(ctx, p); err != nil {
		return Position{}, err
	}
	ps := d.pages[p]
	switch node {
	case model.PageStart(p):
		fp, err := d.flow.Fp(ps.FlowStart)
		return Position{Fp: fp}, err
	case model.PageEnd(p):
		fp, err := d.flow.Fp(ps.FlowEnd)
		return Position{Fp: fp}, err
	}

	id, local, err := d.flow.FlowNodeFromFixed(node, offset)
	if err != nil {
		return Position{}, err
	}
	fp, err := d.flow.Fp(id)
	if err != nil {
		return Position{}, err
	}
	return Position{Fp: fp, Offset: local}, nil
}

// FixedNodesAt returns the physical addresses drawn by the node at a flow
// position. Placeholders of unbuilt and empty pages return the page start
// sentinel; container boundaries return the first or last address inside
// the container.
func (d *Document) FixedNodesAt(fp int) ([]model.FixedNode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.flow.NodeAt(fp)
	if err != nil {
		return nil, err
	}
	switch n.Type {
	case flow.Virtual, flow.Noop:
		return []model.FixedNode{model.PageStart(n.PageIndex)}, nil
	case flow.Start, flow.End:
		el, ok := n.Cookie.(*builder.FlowElement)
		if !ok {
			return nil, nil
		}
		elems := el.AllElements()
		if len(elems) == 0 {
			return nil, nil
		}
		if n.Type == flow.Start {
			return []model.FixedNode{elems[0].FixedNode()}, nil
		}
		return []model.FixedNode{elems[len(elems)-1].FixedNode()}, nil
	}
	return d.flow.FixedNodesOf(n.ID)
}

// NextLine returns the nodes of the line count lines below the one holding
// node on the same page
func (d *Document) NextLine(ctx context.Context, node model.FixedNode, count int) ([]model.FixedNode, error) {
	ps, err := d.structure(ctx, node)
	if err != nil {
		return nil, err
	}
	return ps.NextLine(node, count)
}

// PreviousLine returns the nodes of the line count lines above the one
// holding node on the same page
func (d *Document) PreviousLine(ctx context.Context, node model.FixedNode, count int) ([]model.FixedNode, error) {
	ps, err := d.structure(ctx, node)
	if err != nil {
		return nil, err
	}
	return ps.PreviousLine(node, count)
}

// SnapToLine returns the nodes of the line of page nearest to a page-space
// point
func (d *Document) SnapToLine(ctx context.Context, page int, p model.Point) ([]model.FixedNode, error) {
	ps, err := d.structure(ctx, model.PageStart(page))
	if err != nil {
		return nil, err
	}
	return ps.SnapToLine(p)
}

func (d *Document) structure(ctx context.Context, node model.FixedNode) (*flow.PageStructure, error) {
	if node.IsSentinel() {
		return nil, fmt.Errorf("%w: %s has no page", ErrInvalidArgument, node)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.ensure(ctx, node.Page()); err != nil {
		return nil, err
	}
	return d.pages[node.Page()], nil
}

// LinkTarget resolves a named link target to its 0-indexed page when the
// source declares targets
func (d *Document) LinkTarget(name string) (int, bool) {
	if ls, ok := d.source.(linkSource); ok {
		return ls.LinkTarget(name)
	}
	return 0, false
}

// Find builds every page and returns the matches of query in the logical
// page texts. Pages that fail to build are skipped.
func (d *Document) Find(ctx context.Context, query string, opts search.Options) ([]Match, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ensureAll(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := d.pageTexts()
	m := search.NewMatcher(query, opts)
	var matches []Match
	for _, i := range search.Prefilter(texts, query, opts) {
		for _, r := range m.FindAll(texts[i]) {
			matches = append(matches, Match{Page: i, Range: r})
		}
	}
	return matches, nil
}

func (d *Document) pageTexts() []string {
	texts := make([]string, len(d.pages))
	for i, ps := range d.pages {
		if d.roots[i] != nil {
			texts[i] = search.PageText(ps.Page, true)
		}
	}
	return texts
}

func (d *Document) container() sequence.StringContainer {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasText {
		d.ensureAll(context.Background())
		d.text = sequence.NewStringContainer(strings.Join(d.pageTexts(), "\n"))
		d.hasText = true
	}
	return d.text
}

// Len returns the length in characters of the document text: the logical
// page texts joined by newlines. It builds every page.
func (d *Document) Len() int {
	return d.container().Len()
}

// Text returns the characters [start, end) of the document text
func (d *Document) Text(start, end int) (string, error) {
	return d.container().Text(start, end)
}

// Flow returns the flow trees of the built pages in page order
func (d *Document) Flow() []*builder.FlowElement {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*builder.FlowElement
	for _, r := range d.roots {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks the consistency of the flow order
func (d *Document) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flow.Validate()
}

var _ sequence.TextContainer = (*Document)(nil)
