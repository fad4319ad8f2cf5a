package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// element is one node of a parsed markup part. Names and attribute keys are
// lower case; attribute values are unescaped.
type element struct {
	name     string
	attrs    map[string]string
	children []*element
}

// parseTree reads a markup part into a tree under a synthetic root.
// Mismatched end tags close every element up to the matching start tag;
// unmatched end tags are dropped.
func parseTree(r io.Reader) (*element, error) {
	root := &element{}
	stack := []*element{root}
	z := html.NewTokenizer(r)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return root, nil
			}
			return nil, fmt.Errorf("tokenize: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			el := &element{name: tok.Data, attrs: make(map[string]string, len(tok.Attr))}
			for _, a := range tok.Attr {
				key := a.Key
				if a.Namespace != "" {
					key = a.Namespace + ":" + key
				}
				el.attrs[key] = a.Val
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, el)
			if tt == html.StartTagToken {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].name == string(name) {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

func (e *element) attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return strings.TrimSpace(v), ok
}

// child returns the first child element with the given name
func (e *element) child(name string) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// find returns every descendant with the given name in document order
func (e *element) find(name string) []*element {
	var out []*element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
			continue
		}
		out = append(out, c.find(name)...)
	}
	return out
}

// isProperty reports whether e is a property element such as Path.Fill
func (e *element) isProperty() bool {
	return strings.Contains(e.name, ".")
}

// property returns the first element child of the property element
// owner.prop, e.g. the brush under <Path.Fill>
func (e *element) property(prop string) *element {
	p := e.child(e.name + "." + prop)
	if p == nil || len(p.children) == 0 {
		return nil
	}
	return p.children[0]
}
