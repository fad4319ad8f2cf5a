// reflow prints the reconstructed reading flow of a fixed document package.
//
// Usage:
//
//	reflow [options] <document>
//
// The document is an unpacked package directory or a zip archive holding a
// FixedDocumentSequence or FixedDocument.
//
// Options:
//
//	-mode string      text, flow, tables or find (default "text")
//	-pages string     Comma separated 1-indexed pages and ranges, e.g. 1,3-5
//	-query string     Text to look for in find mode
//	-ignore-case      Case-insensitive find
//	-config string    YAML file with construction thresholds
//	-log-level string Overrides the configured log level
//	-no-color         Disable coloured headings
//
// Examples:
//
//	reflow -mode tables report.xps
//	reflow -mode find -query total -ignore-case report.xps
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/tsawler/reflow"
	"github.com/tsawler/reflow/builder"
	"github.com/tsawler/reflow/internal/logging"
	"github.com/tsawler/reflow/internal/render"
	"github.com/tsawler/reflow/search"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("reflow", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		mode       = fs.String("mode", "text", "Output: text, flow, tables or find")
		pageList   = fs.String("pages", "", "Comma separated 1-indexed pages and ranges, e.g. 1,3-5")
		query      = fs.String("query", "", "Text to look for in find mode")
		ignoreCase = fs.Bool("ignore-case", false, "Case-insensitive find")
		configPath = fs.String("config", "", "YAML file with construction thresholds")
		logLevel   = fs.String("log-level", "", "Overrides the configured log level")
		noColor    = fs.Bool("no-color", false, "Disable coloured headings")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one document, got %d arguments", fs.NArg())
	}
	if *noColor {
		color.NoColor = true
	}

	cfg := reflow.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = reflow.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger, err := logging.New(stderr, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	pages, err := parsePages(*pageList)
	if err != nil {
		return err
	}

	ext := reflow.Open(fs.Arg(0)).Config(cfg).Logger(logger).Pages(pages...)
	out := &printer{w: stdout, heading: color.New(color.FgCyan, color.Bold)}

	var warnings []reflow.Warning
	switch *mode {
	case "text":
		var text string
		if text, warnings, err = ext.Text(); err == nil {
			fmt.Fprintln(stdout, text)
		}
	case "flow":
		var roots []*builder.FlowElement
		if roots, warnings, err = ext.Flow(); err == nil {
			for _, r := range roots {
				out.title("Page %d", r.PageIndex+1)
				out.tree(r, 0)
			}
		}
	case "tables":
		var tables []reflow.PageTable
		if tables, warnings, err = ext.Tables(); err == nil {
			for i, t := range tables {
				out.title("Table %d (page %d, %dx%d)", i+1, t.Page, t.Table.RowCount(), t.Table.ColumnCount())
				fmt.Fprint(stdout, render.FromTable(t.Table, render.CellText).Render())
			}
		}
	case "find":
		if *query == "" {
			return fmt.Errorf("find mode needs -query")
		}
		warnings, err = find(ext, *query, search.Options{IgnoreCase: *ignoreCase}, out)
	default:
		return fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		return err
	}

	if len(warnings) > 0 {
		color.New(color.FgYellow).Fprintln(stderr, reflow.FormatWarnings(warnings))
	}
	return nil
}

func find(ext *reflow.Extractor, query string, opts search.Options, out *printer) ([]reflow.Warning, error) {
	doc, warnings, err := ext.Document()
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	ctx := context.Background()
	matches, err := doc.Find(ctx, query, opts)
	if err != nil {
		return warnings, err
	}
	for _, m := range matches {
		text, err := doc.PageText(ctx, m.Page, true)
		if err != nil {
			return warnings, err
		}
		runes := []rune(text)
		from, to := max(0, m.Start-20), min(len(runes), m.End+20)
		out.title("Page %d [%d, %d)", m.Page+1, m.Start, m.End)
		fmt.Fprintln(out.w, strings.ReplaceAll(string(runes[from:to]), "\n", " "))
	}
	if len(matches) == 0 {
		fmt.Fprintln(out.w, "no matches")
	}
	return warnings, nil
}

// parsePages reads a page list such as "1,3-5"
func parsePages(s string) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("page list %q: %w", s, err)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("page list %q: %w", s, err)
			}
		}
		if last < first {
			return nil, fmt.Errorf("page list %q: descending range %s", s, part)
		}
		for p := first; p <= last; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

type printer struct {
	w       io.Writer
	heading *color.Color
}

func (p *printer) title(format string, args ...any) {
	p.heading.Fprintf(p.w, format+"\n", args...)
}

// tree prints a flow element and its children, one per line
func (p *printer) tree(e *builder.FlowElement, depth int) {
	indent := strings.Repeat("  ", depth)
	switch {
	case e.Kind == builder.Run:
		fmt.Fprintf(p.w, "%s%s %q\n", indent, e.Kind, e.Text())
	case e.Kind == builder.Hyperlink:
		fmt.Fprintf(p.w, "%s%s <%s>\n", indent, e.Kind, e.NavigateURI)
	case e.ColumnSpan > 1 || e.RowSpan > 1:
		fmt.Fprintf(p.w, "%s%s span=%dx%d\n", indent, e.Kind, e.RowSpan, e.ColumnSpan)
	default:
		fmt.Fprintf(p.w, "%s%s\n", indent, e.Kind)
	}
	for _, c := range e.Children {
		p.tree(c, depth+1)
	}
}
