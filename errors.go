package bsn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error kinds surfaced by Reconciler.Apply. Match them with errors.Is.
var (
	// ErrTypeMismatch reports a patch applied to a bag of the wrong type.
	ErrTypeMismatch = errors.New("bsn: type mismatch")
	// ErrUnknownKind reports a kind with no registered descriptor.
	ErrUnknownKind = errors.New("bsn: unknown kind")
	// ErrStaleHandle reports a handle whose live node no longer exists.
	ErrStaleHandle = errors.New("bsn: stale handle")
)

// ApplyError wraps the first failure of a reconciliation pass with the
// position of the node being processed. Path holds child indices from the
// target down; an empty Path is the target itself.
type ApplyError struct {
	Path []int
	Err  error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("bsn: apply at %s: %v", formatPath(e.Path), e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

func formatPath(path []int) string {
	var b strings.Builder
	b.WriteString("root")
	for _, i := range path {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

func staleHandle(h Handle) error {
	return fmt.Errorf("%w: %d", ErrStaleHandle, h)
}

func unknownKind(k Kind) error {
	return fmt.Errorf("%w: %q", ErrUnknownKind, k)
}
