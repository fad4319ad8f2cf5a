// Package sequence aggregates the text of several sub-documents into one
// addressable sequence. Each sub-document is a ChildDocumentBlock that loads
// its text container on first access.
package sequence

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for negative offsets or bad ranges
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange is returned for offsets beyond the aggregate length
	ErrOutOfRange = errors.New("offset out of range")
)

// TextContainer is the text storage of one document
type TextContainer interface {
	// Len returns the number of characters held
	Len() int

	// Text returns the characters in [start, end)
	Text(start, end int) (string, error)
}

// Resolver loads the container of a sub-document reference
type Resolver interface {
	Resolve(ctx context.Context, ref string) (TextContainer, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx context.Context, ref string) (TextContainer, error)

func (f ResolverFunc) Resolve(ctx context.Context, ref string) (TextContainer, error) {
	return f(ctx, ref)
}

// NullContainer is the empty container used in place of a sub-document
// that failed to load
type NullContainer struct{}

func (NullContainer) Len() int { return 0 }

func (NullContainer) Text(start, end int) (string, error) {
	if start != 0 || end != 0 {
		return "", fmt.Errorf("%w: [%d, %d) in empty container", ErrOutOfRange, start, end)
	}
	return "", nil
}

// StringContainer holds text in memory
type StringContainer []rune

// NewStringContainer creates a container over s
func NewStringContainer(s string) StringContainer {
	return StringContainer([]rune(s))
}

func (c StringContainer) Len() int { return len(c) }

func (c StringContainer) Text(start, end int) (string, error) {
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: range [%d, %d)", ErrInvalidArgument, start, end)
	}
	if end > len(c) {
		return "", fmt.Errorf("%w: [%d, %d) beyond %d", ErrOutOfRange, start, end, len(c))
	}
	return string(c[start:end]), nil
}
