package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateRecord means two records were registered under the same
	// (question, group) pair. That is a catalog construction bug and aborts
	// the build.
	ErrDuplicateRecord = errors.New("answer record already registered")

	// ErrRecordNotFound means a lookup named a (question, group) pair the
	// store has never seen. It surfaces to the caller, never gets defaulted.
	ErrRecordNotFound = errors.New("answer record not found")
)

type storeKey struct {
	question string
	group    string
}

// AnswerStore is the authoritative collection of AnswerRecords for one
// session, keyed by (question, group). Records are held by pointer, so a
// response written through Lookup is visible to every holder of the record.
// Iteration order is insertion order. Single session, no locking.
type AnswerStore struct {
	records []*AnswerRecord
	index   map[storeKey]*AnswerRecord
}

// NewAnswerStore creates an empty store.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{
		index: make(map[storeKey]*AnswerRecord),
	}
}

// Add registers a record with the store.
func (s *AnswerStore) Add(rec *AnswerRecord) error {
	k := storeKey{rec.Question, rec.Group}
	if _, ok := s.index[k]; ok {
		return fmt.Errorf("%w: %q in group %q", ErrDuplicateRecord, rec.Question, rec.Group)
	}
	s.index[k] = rec
	s.records = append(s.records, rec)
	return nil
}

// Lookup returns the record for (question, group). The returned pointer is
// the store's own record.
func (s *AnswerStore) Lookup(question, group string) (*AnswerRecord, error) {
	rec, ok := s.index[storeKey{question, group}]
	if !ok {
		return nil, fmt.Errorf("%w: %q in group %q", ErrRecordNotFound, question, group)
	}
	return rec, nil
}

// ByGroup returns the records in the given group, in insertion order.
func (s *AnswerStore) ByGroup(group string) []*AnswerRecord {
	var out []*AnswerRecord
	for _, rec := range s.records {
		if rec.Group == group {
			out = append(out, rec)
		}
	}
	return out
}

// All returns every record in insertion order.
func (s *AnswerStore) All() []*AnswerRecord {
	return s.records
}

// Len returns the number of registered records.
func (s *AnswerStore) Len() int {
	return len(s.records)
}
