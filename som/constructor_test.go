package som

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/reflow/model"
)

func construct(t *testing.T, page *model.Page) *Page {
	t.Helper()
	out, err := NewPageConstructor().Construct(page, 0)
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

func rulePath(a, b model.Point) *model.Path {
	p := model.NewPath(model.Line(a, b))
	p.Stroke = solid()
	return p
}

func TestConstruct_InvalidArguments(t *testing.T) {
	pc := NewPageConstructor()

	_, err := pc.Construct(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = pc.Construct(model.NewPage(100, 100), -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestConstruct_EmptyPage(t *testing.T) {
	page := construct(t, model.NewPage(816, 1056))
	assert.True(t, page.IsEmpty())
	assert.Empty(t, page.Blocks())
	assert.Equal(t, 0, page.Order.Len())
	assert.Equal(t, 816.0, page.Width)
}

// ============================================================================
// Block clustering
// ============================================================================

func TestConstruct_RunsOnOneLineFormOneBlock(t *testing.T) {
	src := model.NewPage(200, 100)
	src.Add(glyphsAt("Alpha", 0, 8, 10, 100))
	src.Add(glyphsAt("Beta", 60, 8, 10, 125))

	page := construct(t, src)
	blocks := page.Blocks()
	require.Len(t, blocks, 1)

	runs := blocks[0].Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "Alpha", runs[0].Text)
	assert.Equal(t, "Beta", runs[1].Text)
	assert.Equal(t, model.NewBBox(0, 0, 110, 10), blocks[0].BBox())
	assert.Empty(t, page.Tables())
	assert.Len(t, page.Elements(), 2)
}

func TestConstruct_LinesFormOneBlock(t *testing.T) {
	src := model.NewPage(200, 100)
	src.Add(glyphsAt("first", 0, 8, 10, 100))
	src.Add(glyphsAt("second", 0, 20, 10, 100))
	src.Add(glyphsAt("far", 0, 80, 10, 100))

	page := construct(t, src)
	blocks := page.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "first\nsecond", blocks[0].Text())
	assert.Equal(t, "far", blocks[1].Text())
}

func TestConstruct_FontSizeChangeStartsBlock(t *testing.T) {
	src := model.NewPage(400, 100)
	src.Add(glyphsAt("Heading", 0, 16, 20, 100))
	src.Add(glyphsAt("body", 0, 30, 10, 100))

	page := construct(t, src)
	assert.Len(t, page.Blocks(), 2)
}

func TestConstruct_WhitespaceOrphans(t *testing.T) {
	src := model.NewPage(400, 400)
	src.Add(glyphsAt("Alpha", 0, 8, 10, 100))
	src.Add(glyphsAt(" ", 50, 8, 10, 100))
	src.Add(glyphsAt(" ", 300, 300, 10, 100))

	page := construct(t, src)
	blocks := page.Blocks()
	require.Len(t, blocks, 1)
	assert.Len(t, blocks[0].Runs(), 2)

	orphans := page.Orphans()
	require.Len(t, orphans, 1)
	assert.Nil(t, orphans[0].Block())
	assert.Len(t, page.Elements(), 3)
}

func TestConstruct_CanvasTransform(t *testing.T) {
	src := model.NewPage(400, 400)
	canvas := model.NewCanvas()
	canvas.RenderTransform = model.Translate(100, 50)
	canvas.Add(glyphsAt("Alpha", 0, 8, 10, 100))
	src.Add(canvas)

	page := construct(t, src)
	require.Len(t, page.Blocks(), 1)
	assert.Equal(t, model.NewBBox(100, 50, 50, 10), page.Blocks()[0].BBox())
	assert.Equal(t, model.NewFixedNode(0, 0, 0), page.Blocks()[0].Runs()[0].FixedNode())
}

// ============================================================================
// Rule lines, decorations and tables
// ============================================================================

func TestConstruct_VerticalRuleMakesTable(t *testing.T) {
	src := model.NewPage(200, 100)
	src.Add(glyphsAt("Alpha", 0, 8, 10, 100))
	src.Add(glyphsAt("Beta", 60, 8, 10, 125))
	src.Add(rulePath(model.Point{X: 55, Y: -2}, model.Point{X: 55, Y: 12}))

	page := construct(t, src)
	assert.Empty(t, page.Blocks())

	tables := page.Tables()
	require.Len(t, tables, 1)
	table := tables[0]
	assert.Equal(t, 1, table.RowCount())
	assert.Equal(t, 2, table.ColumnCount())

	first := table.Cell(0, 0).Children()
	second := table.Cell(0, 1).Children()
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "Alpha", first[0].(*FixedBlock).Text())
	assert.Equal(t, "Beta", second[0].(*FixedBlock).Text())
	assert.Len(t, page.Lines.Verticals(), 1)
}

func TestConstruct_RuledGrid(t *testing.T) {
	src := model.NewPage(400, 200)
	for _, y := range []float64{0, 30, 60} {
		src.Add(rulePath(model.Point{X: 0, Y: y}, model.Point{X: 200, Y: y}))
	}
	for _, x := range []float64{0, 100, 200} {
		src.Add(rulePath(model.Point{X: x, Y: 0}, model.Point{X: x, Y: 60}))
	}
	src.Add(glyphsAt("A1", 10, 20, 10, 100))
	src.Add(glyphsAt("B1", 110, 20, 10, 100))
	src.Add(glyphsAt("A2", 10, 50, 10, 100))
	src.Add(glyphsAt("B2", 110, 50, 10, 100))
	src.Add(glyphsAt("after", 0, 120, 10, 100))

	page := construct(t, src)
	tables := page.Tables()
	require.Len(t, tables, 1)
	table := tables[0]
	require.Equal(t, 2, table.RowCount())
	require.Equal(t, 2, table.ColumnCount())

	text := func(row, col int) string {
		children := table.Cell(row, col).Children()
		require.Len(t, children, 1)
		return children[0].(*FixedBlock).Text()
	}
	assert.Equal(t, "A1", text(0, 0))
	assert.Equal(t, "B1", text(0, 1))
	assert.Equal(t, "A2", text(1, 0))
	assert.Equal(t, "B2", text(1, 1))

	// The table precedes the paragraph below it
	children := page.Children()
	require.Len(t, children, 2)
	assert.Same(t, table, children[0])
	assert.Equal(t, "after", children[1].(*FixedBlock).Text())
}

func TestConstruct_HorizontalRulesAloneAreNotTables(t *testing.T) {
	src := model.NewPage(400, 200)
	src.Add(glyphsAt("Alpha", 0, 20, 10, 100))
	src.Add(rulePath(model.Point{X: 0, Y: 0}, model.Point{X: 200, Y: 0}))
	src.Add(rulePath(model.Point{X: 0, Y: 40}, model.Point{X: 200, Y: 40}))

	page := construct(t, src)
	assert.Empty(t, page.Tables())
	assert.Len(t, page.Blocks(), 1)
	assert.Len(t, page.Lines.Horizontals(), 2)
}

func TestConstruct_Underline(t *testing.T) {
	src := model.NewPage(200, 100)
	src.Add(glyphsAt("Alpha", 0, 8, 10, 100))
	src.Add(rulePath(model.Point{X: 0, Y: 9.5}, model.Point{X: 50, Y: 9.5}))

	page := construct(t, src)
	require.Len(t, page.Blocks(), 1)
	run := page.Blocks()[0].Runs()[0]
	assert.True(t, run.Underline)
	assert.False(t, run.Strikethrough)
	assert.Zero(t, page.Lines.Len())
}

func TestConstruct_Strikethrough(t *testing.T) {
	src := model.NewPage(200, 100)
	src.Add(glyphsAt("Alpha", 0, 8, 10, 100))
	src.Add(rulePath(model.Point{X: 0, Y: 5}, model.Point{X: 50, Y: 5}))

	page := construct(t, src)
	run := page.Blocks()[0].Runs()[0]
	assert.True(t, run.Strikethrough)
	assert.False(t, run.Underline)
}

func TestConstruct_LongRuleIsNotUnderline(t *testing.T) {
	src := model.NewPage(400, 100)
	src.Add(glyphsAt("Alpha", 0, 8, 10, 100))
	src.Add(rulePath(model.Point{X: 0, Y: 9.5}, model.Point{X: 300, Y: 9.5}))

	page := construct(t, src)
	run := page.Blocks()[0].Runs()[0]
	assert.False(t, run.Underline)
	assert.Equal(t, 1, page.Lines.Len())
}

func TestConstruct_Fills(t *testing.T) {
	src := model.NewPage(400, 400)

	background := model.NewPath(model.Rectangle(model.NewBBox(0, 0, 400, 400)))
	background.Fill = solid()
	src.Add(background)

	thin := model.NewPath(model.Rectangle(model.NewBBox(0, 100, 300, 1)))
	thin.Fill = solid()
	src.Add(thin)

	invisible := model.NewPath(model.Rectangle(model.NewBBox(0, 200, 10, 300)))
	invisible.Fill = &model.SolidColorBrush{Color: model.Color{A: 0}}
	src.Add(invisible)

	src.Add(glyphsAt("Alpha", 0, 8, 10, 100))

	page := construct(t, src)
	require.Len(t, page.Lines.Horizontals(), 1)
	assert.Equal(t, 100.5, page.Lines.Horizontals()[0].Coord)
	assert.Empty(t, page.Lines.Verticals())
	assert.Len(t, page.Blocks(), 1)
}

func TestConstruct_Images(t *testing.T) {
	src := model.NewPage(400, 400)
	img := model.NewPath(model.Rectangle(model.NewBBox(0, 100, 200, 100)))
	img.Fill = &model.ImageBrush{ImageSource: "/Resources/a.png"}
	src.Add(glyphsAt("Caption", 0, 8, 10, 100))
	src.Add(img)

	page := construct(t, src)
	images := page.Images()
	require.Len(t, images, 1)
	assert.Equal(t, "/Resources/a.png", images[0].Source)

	reading := page.ReadingOrder()
	require.Len(t, reading, 2)
	assert.Same(t, images[0], reading[1])
}

func TestConstruct_RTLPageOrder(t *testing.T) {
	src := model.NewPage(400, 100)
	right := glyphsAt("שלום", 300, 8, 10, 100)
	left := glyphsAt("עולם", 0, 8, 10, 100)
	src.Add(left)
	src.Add(right)

	page := construct(t, src)
	require.True(t, page.IsRTL())

	blocks := page.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, 300.0, blocks[0].BBox().Left())
}

func TestConstruct_LogsSummary(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	src := model.NewPage(200, 100)
	src.Add(glyphsAt("Alpha", 0, 8, 10, 100))

	_, err := NewPageConstructorWithConfig(DefaultConfig(), logger).Construct(src, 3)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "page constructed", entry.Message)
	assert.Equal(t, 3, entry.Data["page"])
	assert.Equal(t, 1, entry.Data["blocks"])
}
