package sequence

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/reflow/dispatch"
	"github.com/tsawler/reflow/internal/logging"
)

// Sequence is an ordered chain of sub-document blocks
type Sequence struct {
	resolver Resolver
	logger   logrus.FieldLogger

	mu    sync.Mutex
	first *ChildDocumentBlock
	last  *ChildDocumentBlock
	count int
}

// New creates an empty sequence resolving references with resolver. A nil
// logger discards output.
func New(resolver Resolver, logger logrus.FieldLogger) *Sequence {
	return &Sequence{resolver: resolver, logger: logging.OrDiscard(logger)}
}

// ChildDocumentBlock is the link of one sub-document in a sequence
type ChildDocumentBlock struct {
	Ref string

	seq        *Sequence
	next, prev *ChildDocumentBlock

	mu        sync.Mutex
	container TextContainer
	failed    error
}

// AddChild appends a block for ref and returns it. The sub-document is not
// loaded until its container is first requested.
func (s *Sequence) AddChild(ref string) *ChildDocumentBlock {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &ChildDocumentBlock{Ref: ref, seq: s, prev: s.last}
	if s.last != nil {
		s.last.next = b
	} else {
		s.first = b
	}
	s.last = b
	s.count++
	return b
}

// First returns the first block, or nil
func (s *Sequence) First() *ChildDocumentBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first
}

// Last returns the last block, or nil
func (s *Sequence) Last() *ChildDocumentBlock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Count returns the number of blocks
func (s *Sequence) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Next returns the following block, or nil
func (b *ChildDocumentBlock) Next() *ChildDocumentBlock {
	b.seq.mu.Lock()
	defer b.seq.mu.Unlock()
	return b.next
}

// Prev returns the preceding block, or nil
func (b *ChildDocumentBlock) Prev() *ChildDocumentBlock {
	b.seq.mu.Lock()
	defer b.seq.mu.Unlock()
	return b.prev
}

// Container returns the block's text container, loading it on first use.
// A load failure is logged and the block keeps a NullContainer from then
// on.
func (b *ChildDocumentBlock) Container(ctx context.Context) TextContainer {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.container != nil {
		return b.container
	}

	c, err := b.load(ctx)
	if err != nil {
		b.seq.logger.WithError(err).WithField("ref", b.Ref).Warn("sub-document failed to load")
		b.failed = err
		c = NullContainer{}
	}
	b.container = c
	return c
}

func (b *ChildDocumentBlock) load(ctx context.Context) (TextContainer, error) {
	if b.seq.resolver == nil {
		return nil, fmt.Errorf("no resolver for %q", b.Ref)
	}
	c, err := b.seq.resolver.Resolve(ctx, b.Ref)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("resolver returned no container for %q", b.Ref)
	}
	return c, nil
}

// IsLoaded reports whether the container has been requested
func (b *ChildDocumentBlock) IsLoaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.container != nil
}

// LoadErr returns the error that replaced the container with a
// NullContainer, if any
func (b *ChildDocumentBlock) LoadErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failed
}

// LoadAsync loads the container on d
func (b *ChildDocumentBlock) LoadAsync(d *dispatch.Dispatcher) *dispatch.Operation[TextContainer] {
	return dispatch.Begin(d, func(ctx context.Context) (TextContainer, error) {
		return b.Container(ctx), nil
	})
}

// Len returns the total length of every block, loading each as needed
func (s *Sequence) Len(ctx context.Context) int {
	total := 0
	for b := s.First(); b != nil; b = b.Next() {
		total += b.Container(ctx).Len()
	}
	return total
}

// Locate maps an aggregate offset to its block and the offset inside it.
// The end of the sequence maps to the end of the last block.
func (s *Sequence) Locate(ctx context.Context, offset int) (*ChildDocumentBlock, int, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, offset)
	}

	local := offset
	var last *ChildDocumentBlock
	for b := s.First(); b != nil; b = b.Next() {
		n := b.Container(ctx).Len()
		if local < n {
			return b, local, nil
		}
		local -= n
		last = b
	}
	if last != nil && local == 0 {
		return last, last.Container(ctx).Len(), nil
	}
	return nil, 0, fmt.Errorf("%w: %d", ErrOutOfRange, offset)
}

// Text returns the aggregate characters in [start, end) across blocks
func (s *Sequence) Text(ctx context.Context, start, end int) (string, error) {
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: range [%d, %d)", ErrInvalidArgument, start, end)
	}

	var sb strings.Builder
	pos := 0
	for b := s.First(); b != nil && pos < end; b = b.Next() {
		c := b.Container(ctx)
		n := c.Len()
		from, to := max(start-pos, 0), min(end-pos, n)
		if from < to {
			part, err := c.Text(from, to)
			if err != nil {
				return "", fmt.Errorf("block %q: %w", b.Ref, err)
			}
			sb.WriteString(part)
		}
		pos += n
	}
	if end > pos {
		return "", fmt.Errorf("%w: [%d, %d) beyond %d", ErrOutOfRange, start, end, pos)
	}
	return sb.String(), nil
}
