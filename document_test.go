package reflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reflow/dispatch"
	"github.com/tsawler/reflow/flow"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/search"
)

var errBroken = errors.New("broken page")

// memSource serves prepared pages; pages listed in fail return an error
type memSource struct {
	pages  []*model.Page
	fail   map[int]bool
	loads  map[int]int
	closed int
}

func newMemSource(pages ...*model.Page) *memSource {
	return &memSource{pages: pages, fail: make(map[int]bool), loads: make(map[int]int)}
}

func (s *memSource) PageCount() int { return len(s.pages) }

func (s *memSource) LoadPage(ctx context.Context, i int) (*model.Page, error) {
	s.loads[i]++
	if s.fail[i] {
		return nil, errBroken
	}
	return s.pages[i], nil
}

func (s *memSource) Close() error {
	s.closed++
	return nil
}

func (s *memSource) LinkTarget(name string) (int, bool) {
	if name == "second" {
		return 1, true
	}
	return 0, false
}

func glyphs(s string, x, y float64) *model.Glyphs {
	g := model.NewGlyphs(s, x, y, 10)
	for range s {
		g.Indices = append(g.Indices, model.GlyphMapping{ClusterCodeUnits: 1, ClusterGlyphs: 1, Index: -1, Advance: 100, HasAdvance: true})
	}
	return g
}

// helloWorld is a page of two paragraphs: "Hello" at index 0 and "World"
// at index 1
func helloWorld() *model.Page {
	p := model.NewPage(400, 400)
	p.Add(glyphs("Hello", 0, 20))
	p.Add(glyphs("World", 0, 200))
	return p
}

func openDoc(t *testing.T, src *memSource) *Document {
	t.Helper()
	doc, err := NewDocument(src, DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	return doc
}

// ============================================================================
// Lazy page building
// ============================================================================

func TestDocument_StartsVirtual(t *testing.T) {
	doc := openDoc(t, newMemSource(helloWorld(), model.NewPage(100, 100)))

	assert.Equal(t, 2, doc.PageCount())
	assert.Equal(t, 4, doc.FlowCount())
	assert.False(t, doc.IsBuilt(0))

	nodes, err := doc.FixedNodesAt(2)
	require.NoError(t, err)
	assert.Equal(t, []model.FixedNode{model.PageStart(1)}, nodes)
}

func TestDocument_EnsurePage(t *testing.T) {
	src := newMemSource(helloWorld(), model.NewPage(100, 100))
	doc := openDoc(t, src)
	ctx := context.Background()

	root, err := doc.EnsurePage(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", root.Text())
	assert.True(t, doc.IsBuilt(0))

	// the placeholder is replaced by three nodes per paragraph
	assert.Equal(t, 9, doc.FlowCount())
	require.NoError(t, doc.Validate())

	again, err := doc.EnsurePage(ctx, 0)
	require.NoError(t, err)
	assert.Same(t, root, again)
	assert.Equal(t, 1, src.loads[0])

	_, err = doc.EnsurePage(ctx, 2)
	assert.ErrorIs(t, err, ErrPageRange)
}

func TestDocument_EmptyPageIsNoop(t *testing.T) {
	doc := openDoc(t, newMemSource(model.NewPage(100, 100)))

	_, err := doc.EnsurePage(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.FlowCount())

	nodes, err := doc.FixedNodesAt(1)
	require.NoError(t, err)
	assert.Equal(t, []model.FixedNode{model.PageStart(0)}, nodes)
}

func TestDocument_FailedPageStaysVirtual(t *testing.T) {
	src := newMemSource(helloWorld(), helloWorld())
	src.fail[1] = true
	doc := openDoc(t, src)
	ctx := context.Background()

	_, err := doc.EnsurePage(ctx, 1)
	assert.ErrorIs(t, err, errBroken)
	_, err = doc.EnsurePage(ctx, 1)
	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, 1, src.loads[1])
	assert.False(t, doc.IsBuilt(1))
	assert.Equal(t, 4, doc.FlowCount())
}

func TestDocument_CanceledContext(t *testing.T) {
	src := newMemSource(helloWorld())
	doc := openDoc(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := doc.EnsurePage(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, src.loads[0])

	// cancellation is not remembered
	_, err = doc.EnsurePage(context.Background(), 0)
	assert.NoError(t, err)
}

// ============================================================================
// Position mapping
// ============================================================================

func TestDocument_FlowPosition(t *testing.T) {
	doc := openDoc(t, newMemSource(helloWorld(), model.NewPage(100, 100)))
	ctx := context.Background()

	tests := []struct {
		name   string
		node   model.FixedNode
		offset int
		want   Position
	}{
		{"document start", model.DocumentStart(), 0, Position{Fp: 0}},
		{"first run", model.NewFixedNode(0, 0), 0, Position{Fp: 2}},
		{"inside second run", model.NewFixedNode(0, 1), 2, Position{Fp: 5, Offset: 2}},
		{"end of second run", model.NewFixedNode(0, 1), 5, Position{Fp: 5, Offset: 5}},
		{"page start", model.PageStart(0), 0, Position{Fp: 1}},
		{"page end", model.PageEnd(0), 0, Position{Fp: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := doc.FlowPosition(ctx, tt.node, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	// page 1 is still virtual; asking for the end boundary does not build it
	end, err := doc.FlowPosition(ctx, model.DocumentEnd(), 0)
	require.NoError(t, err)
	assert.Equal(t, Position{Fp: 8}, end)
	assert.False(t, doc.IsBuilt(1))

	_, err = doc.FlowPosition(ctx, model.NewFixedNode(0, 7), 0)
	assert.ErrorIs(t, err, flow.ErrNotFound)
}

func TestDocument_FixedNodesAt(t *testing.T) {
	doc := openDoc(t, newMemSource(helloWorld()))
	_, err := doc.EnsurePage(context.Background(), 0)
	require.NoError(t, err)

	tests := []struct {
		fp   int
		want []model.FixedNode
	}{
		{0, []model.FixedNode{model.DocumentStart()}},
		{1, []model.FixedNode{model.NewFixedNode(0, 0)}},
		{2, []model.FixedNode{model.NewFixedNode(0, 0)}},
		{6, []model.FixedNode{model.NewFixedNode(0, 1)}},
		{7, []model.FixedNode{model.DocumentEnd()}},
	}
	for _, tt := range tests {
		got, err := doc.FixedNodesAt(tt.fp)
		require.NoError(t, err, "fp %d", tt.fp)
		assert.Equal(t, tt.want, got, "fp %d", tt.fp)
	}

	_, err = doc.FixedNodesAt(8)
	assert.ErrorIs(t, err, flow.ErrInvalidArgument)
}

func TestDocument_Lines(t *testing.T) {
	doc := openDoc(t, newMemSource(helloWorld()))
	ctx := context.Background()
	hello, world := model.NewFixedNode(0, 0), model.NewFixedNode(0, 1)

	next, err := doc.NextLine(ctx, hello, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.FixedNode{world}, next)

	// movement stops at the last line
	next, err = doc.NextLine(ctx, hello, 5)
	require.NoError(t, err)
	assert.Equal(t, []model.FixedNode{world}, next)

	prev, err := doc.PreviousLine(ctx, world, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.FixedNode{hello}, prev)

	snapped, err := doc.SnapToLine(ctx, 0, model.Point{X: 10, Y: 190})
	require.NoError(t, err)
	assert.Equal(t, []model.FixedNode{world}, snapped)

	_, err = doc.NextLine(ctx, model.DocumentStart(), 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// ============================================================================
// Text and search
// ============================================================================

func TestDocument_PageTextAndElements(t *testing.T) {
	doc := openDoc(t, newMemSource(helloWorld()))
	ctx := context.Background()

	text, err := doc.PageText(ctx, 0, true)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", text)

	elems, err := doc.Elements(ctx, 0)
	require.NoError(t, err)
	require.Len(t, elems, 2)
	assert.Equal(t, model.NewFixedNode(0, 0), elems[0].FixedNode())
}

func TestDocument_Find(t *testing.T) {
	src := newMemSource(helloWorld(), helloWorld(), helloWorld())
	src.fail[1] = true
	doc := openDoc(t, src)

	matches, err := doc.Find(context.Background(), "world", search.Options{IgnoreCase: true})
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{Page: 0, Range: search.Range{Start: 6, End: 11}},
		{Page: 2, Range: search.Range{Start: 6, End: 11}},
	}, matches)

	matches, err = doc.Find(context.Background(), "world", search.Options{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDocument_TextContainer(t *testing.T) {
	doc := openDoc(t, newMemSource(helloWorld(), model.NewPage(100, 100), helloWorld()))

	assert.Equal(t, len("Hello\nWorld\n\nHello\nWorld"), doc.Len())
	s, err := doc.Text(6, 11)
	require.NoError(t, err)
	assert.Equal(t, "World", s)

	_, err = doc.Text(0, 100)
	assert.Error(t, err)
}

func TestDocument_LinkTarget(t *testing.T) {
	doc := openDoc(t, newMemSource(helloWorld(), helloWorld()))

	page, ok := doc.LinkTarget("second")
	assert.True(t, ok)
	assert.Equal(t, 1, page)

	_, ok = doc.LinkTarget("missing")
	assert.False(t, ok)
}

// ============================================================================
// Async loading and lifecycle
// ============================================================================

func TestDocument_LoadPageAsync(t *testing.T) {
	doc := openDoc(t, newMemSource(helloWorld()))

	op := doc.LoadPageAsync(0)
	root, err := op.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", root.Text())
	assert.True(t, doc.IsBuilt(0))
}

func TestDocument_Close(t *testing.T) {
	src := newMemSource(helloWorld())
	doc, err := newDocument(src, true, DefaultConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close())
	assert.Equal(t, 1, src.closed)

	_, err = doc.LoadPageAsync(0).Wait(context.Background())
	assert.ErrorIs(t, err, dispatch.ErrClosed)
}

func TestNewDocument_Rejects(t *testing.T) {
	_, err := NewDocument(nil, DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	_, err = NewDocument(newMemSource(), cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
