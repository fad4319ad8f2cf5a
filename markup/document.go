// Package markup loads fixed-layout documents: a FixedDocumentSequence or
// FixedDocument referencing FixedPage parts, read from any fs.FS such as a
// directory or an unpacked or zipped package.
//
// Pages are parsed on demand into model pages. Glyph metrics come from the
// package's fonts, image brushes are sized from their image parts and story
// fragments become the page's structural hints.
package markup

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/reflow/font"
	"github.com/tsawler/reflow/internal/logging"
	"github.com/tsawler/reflow/model"
)

var (
	// ErrNoDocument is returned when no document root can be found
	ErrNoDocument = errors.New("no fixed document found")

	// ErrInvalidMarkup is returned for malformed parts
	ErrInvalidMarkup = errors.New("invalid markup")

	// ErrPageRange is returned for page indices outside the document
	ErrPageRange = errors.New("page index out of range")
)

const (
	relFixedRepresentation = "fixedrepresentation"
	relStoryFragments      = "storyfragments"
)

// PageRef is one page entry of a fixed document
type PageRef struct {
	Part string

	// Width and Height are the size hints of the page entry, zero if absent
	Width  float64
	Height float64
}

// Document is a loaded fixed document. Pages are parsed on each LoadPage
// call; callers cache the result. A Document is safe for concurrent use.
type Document struct {
	fsys   fs.FS
	closer io.Closer
	logger logrus.FieldLogger

	pages   []PageRef
	targets map[string]int

	mu    sync.Mutex
	fonts *font.Cache
}

// Open reads the document structure from fsys. The root is the part named by
// the package relationships, or else the first .fdseq or .fdoc part at the
// top level. A nil logger discards output.
func Open(fsys fs.FS, logger logrus.FieldLogger) (*Document, error) {
	d := &Document{
		fsys:    fsys,
		logger:  logging.OrDiscard(logger),
		targets: make(map[string]int),
	}
	d.fonts = font.NewCache(func(uri string) ([]byte, error) {
		return fs.ReadFile(fsys, uri)
	}, d.logger)

	root, err := d.findRoot()
	if err != nil {
		return nil, err
	}
	if err := d.readRoot(root); err != nil {
		return nil, err
	}

	d.logger.WithFields(logrus.Fields{
		"root":  root,
		"pages": len(d.pages),
	}).Debug("fixed document opened")
	return d, nil
}

// OpenFile opens a document package from a zip file or an unpacked
// directory
func OpenFile(filename string, logger logrus.FieldLogger) (*Document, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	if info.IsDir() {
		return Open(os.DirFS(filename), logger)
	}

	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	d, err := Open(zr, logger)
	if err != nil {
		zr.Close()
		return nil, err
	}
	d.closer = zr
	return d, nil
}

// Close releases the underlying package file, if any
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Pages returns the page entries in document order
func (d *Document) Pages() []PageRef {
	return append([]PageRef(nil), d.pages...)
}

// LinkTarget returns the page declaring the named link target
func (d *Document) LinkTarget(name string) (int, bool) {
	i, ok := d.targets[name]
	return i, ok
}

// LoadPage parses page i
func (d *Document) LoadPage(ctx context.Context, i int) (*model.Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageRange, i, len(d.pages))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ref := d.pages[i]
	page, err := d.parsePage(ref)
	if err != nil {
		return nil, fmt.Errorf("page %d (%s): %w", i, ref.Part, err)
	}
	return page, nil
}

func (d *Document) findRoot() (string, error) {
	for _, rel := range d.relationships("") {
		if strings.HasSuffix(strings.ToLower(rel.typ), relFixedRepresentation) {
			return rel.target, nil
		}
	}
	for _, pattern := range []string{"*.fdseq", "*.fdoc"} {
		matches, err := fs.Glob(d.fsys, pattern)
		if err != nil {
			return "", fmt.Errorf("searching %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", ErrNoDocument
}

func (d *Document) readPart(part string) (*element, error) {
	f, err := d.fsys.Open(part)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", part, err)
	}
	defer f.Close()

	root, err := parseTree(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", part, err)
	}
	return root, nil
}

func (d *Document) readRoot(part string) error {
	root, err := d.readPart(part)
	if err != nil {
		return err
	}
	if seq := root.child("fixeddocumentsequence"); seq != nil {
		for _, ref := range seq.find("documentreference") {
			src, ok := ref.attr("source")
			if !ok || src == "" {
				continue
			}
			if err := d.readFixedDocument(resolvePart(part, src)); err != nil {
				return err
			}
		}
		return nil
	}
	if root.child("fixeddocument") != nil {
		return d.readDocumentElement(part, root)
	}
	return fmt.Errorf("%w: %s is neither a document sequence nor a document", ErrInvalidMarkup, part)
}

func (d *Document) readFixedDocument(part string) error {
	root, err := d.readPart(part)
	if err != nil {
		return err
	}
	return d.readDocumentElement(part, root)
}

func (d *Document) readDocumentElement(part string, root *element) error {
	doc := root.child("fixeddocument")
	if doc == nil {
		return fmt.Errorf("%w: %s has no FixedDocument element", ErrInvalidMarkup, part)
	}
	for _, pc := range doc.find("pagecontent") {
		src, ok := pc.attr("source")
		if !ok || src == "" {
			continue
		}
		ref := PageRef{Part: resolvePart(part, src)}
		w, _ := pc.attr("width")
		h, _ := pc.attr("height")
		ref.Width, _ = parseFloat(w, 0)
		ref.Height, _ = parseFloat(h, 0)

		index := len(d.pages)
		d.pages = append(d.pages, ref)
		for _, lt := range pc.find("linktarget") {
			if name, ok := lt.attr("name"); ok && name != "" {
				if _, dup := d.targets[name]; !dup {
					d.targets[name] = index
				}
			}
		}
	}
	return nil
}

// resolvePart resolves a part reference against the part it appears in.
// Fragments are dropped; absolute references start at the package root.
func resolvePart(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		ref = ref[:i]
	}
	if u, err := url.PathUnescape(ref); err == nil {
		ref = u
	}
	ref = strings.ReplaceAll(ref, "\\", "/")
	if strings.HasPrefix(ref, "/") {
		return path.Clean(strings.TrimLeft(ref, "/"))
	}
	return path.Join(path.Dir(base), ref)
}

type relationship struct {
	typ    string
	target string
}

// relationships reads the relationship part of part; "" reads the package
// relationships. A missing part yields none.
func (d *Document) relationships(part string) []relationship {
	relPart := "_rels/.rels"
	if part != "" {
		relPart = path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
	}
	f, err := d.fsys.Open(relPart)
	if err != nil {
		return nil
	}
	defer f.Close()

	root, err := parseTree(f)
	if err != nil {
		d.logger.WithError(err).WithField("part", relPart).Debug("relationships unreadable")
		return nil
	}

	var out []relationship
	for _, r := range root.find("relationship") {
		target, _ := r.attr("target")
		typ, _ := r.attr("type")
		if target == "" {
			continue
		}
		out = append(out, relationship{typ: typ, target: resolvePart(part, target)})
	}
	return out
}
