// internal/results/store.go
package results

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIndexOutOfRange is matched by every *IndexError.
var ErrIndexOutOfRange = errors.New("result index out of range")

// IndexError reports an override addressed past the end of the store.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("result index %d out of range [0,%d)", e.Index, e.Len)
}

// Is lets errors.Is match ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// Store is the append-only collection of results for one job.
//
// Position in the store equals arrival order from the poll stream and is the
// identity used for overrides, so records are never removed or reordered.
// Store does no locking; its owner serializes Append and Override.
type Store struct {
	results []TestResult
	version uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of stored results.
func (s *Store) Len() int { return len(s.results) }

// Version changes every time the store is mutated.
func (s *Store) Version() uint64 { return s.version }

// Append merges the full result history reported by a poll response. Only the
// suffix beyond Len is appended; earlier entries are trusted to be unchanged.
// A response shorter than the store is stale and ignored. It returns the
// number of records appended.
func (s *Store) Append(incoming []TestResult) int {
	if len(incoming) <= len(s.results) {
		return 0
	}
	delta := incoming[len(s.results):]
	s.results = append(s.results, delta...)
	s.version++
	return len(delta)
}

// Override sets the verdict of the result at index and marks it as
// operator-changed. Status, position and counts are untouched.
func (s *Store) Override(index int, passed bool) error {
	if index < 0 || index >= len(s.results) {
		return &IndexError{Index: index, Len: len(s.results)}
	}
	s.results[index].Passed = passed
	s.results[index].HumanOverride = &passed
	s.version++
	return nil
}

// At returns the result stored at index.
func (s *Store) At(index int) (TestResult, error) {
	if index < 0 || index >= len(s.results) {
		return TestResult{}, &IndexError{Index: index, Len: len(s.results)}
	}
	return s.results[index], nil
}

// All returns a snapshot of the stored results in insertion order.
func (s *Store) All() []TestResult {
	return slices.Clone(s.results)
}

// Reset discards every result. It is only used when a new job starts.
func (s *Store) Reset() {
	s.results = nil
	s.version++
}
