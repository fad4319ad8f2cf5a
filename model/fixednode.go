package model

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

// FixedNode is the physical address of a primitive: a page index and the
// child-index path from the page root down to the primitive.
//
// FixedNode is an immutable, comparable value and can be used as a map key.
// The path is kept as big-endian encoded indices so that comparing the
// encoded strings orders paths lexicographically by index.
type FixedNode struct {
	page int
	path string
}

// NewFixedNode creates a FixedNode for page and path. Negative path
// indices are clamped to zero.
func NewFixedNode(page int, path ...int) FixedNode {
	var sb strings.Builder
	sb.Grow(4 * len(path))
	var buf [4]byte
	for _, idx := range path {
		if idx < 0 {
			idx = 0
		}
		binary.BigEndian.PutUint32(buf[:], uint32(idx))
		sb.Write(buf[:])
	}
	return FixedNode{page: page, path: sb.String()}
}

// DocumentStart returns the sentinel that sorts before every node of every page
func DocumentStart() FixedNode {
	return FixedNode{page: math.MinInt}
}

// DocumentEnd returns the sentinel that sorts after every node of every page
func DocumentEnd() FixedNode {
	return FixedNode{page: math.MaxInt}
}

// PageStart returns the "before first" sentinel of a page
func PageStart(page int) FixedNode {
	return NewFixedNode(page)
}

// PageEnd returns the "after last" sentinel of a page
func PageEnd(page int) FixedNode {
	return NewFixedNode(page, math.MaxUint32>>1)
}

// Page returns the page index
func (n FixedNode) Page() int {
	return n.page
}

// Depth returns the number of entries in the child-index path
func (n FixedNode) Depth() int {
	return len(n.path) / 4
}

// ChildIndex returns the path entry at the given level
func (n FixedNode) ChildIndex(level int) int {
	if level < 0 || level >= n.Depth() {
		return -1
	}
	return int(binary.BigEndian.Uint32([]byte(n.path[level*4 : level*4+4])))
}

// Path returns a copy of the child-index path
func (n FixedNode) Path() []int {
	path := make([]int, n.Depth())
	for i := range path {
		path[i] = n.ChildIndex(i)
	}
	return path
}

// Parent returns the node one level up. The parent of a page-level node is
// the page start sentinel.
func (n FixedNode) Parent() FixedNode {
	if len(n.path) == 0 {
		return n
	}
	return FixedNode{page: n.page, path: n.path[:len(n.path)-4]}
}

// Child returns the address of the i-th child of n
func (n FixedNode) Child(i int) FixedNode {
	if i < 0 {
		i = 0
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(i))
	return FixedNode{page: n.page, path: n.path + string(buf[:])}
}

// IsAncestorOf reports whether other lies strictly below n
func (n FixedNode) IsAncestorOf(other FixedNode) bool {
	return n.page == other.page &&
		len(other.path) > len(n.path) &&
		strings.HasPrefix(other.path, n.path)
}

// IsSentinel reports whether n is the document start or end sentinel
func (n FixedNode) IsSentinel() bool {
	return n.page == math.MinInt || n.page == math.MaxInt
}

// Compare orders nodes by page index, then lexicographically by path.
// It returns -1, 0 or +1.
func (n FixedNode) Compare(other FixedNode) int {
	switch {
	case n.page < other.page:
		return -1
	case n.page > other.page:
		return 1
	}
	return strings.Compare(n.path, other.path)
}

// String formats the node as page:i/j/k
func (n FixedNode) String() string {
	switch n.page {
	case math.MinInt:
		return "start"
	case math.MaxInt:
		return "end"
	}

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(n.page))
	sb.WriteByte(':')
	for i := 0; i < n.Depth(); i++ {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(strconv.Itoa(n.ChildIndex(i)))
	}
	return sb.String()
}
