package indexing

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Document is one searchable record derived from a transaction. Text is the
// embedding-ready rendering; Metadata carries the filterable fields.
type Document struct {
	TransactionID uuid.UUID
	UserID        uuid.UUID
	Text          string
	Metadata      map[string]interface{}
}

// DocumentSink receives index documents. The production deployment points
// this at a vector store; the in-memory sink backs tests and single-node
// setups. Upserts are expressed as delete-then-insert so sinks never need
// native update support.
type DocumentSink interface {
	Insert(ctx context.Context, doc Document) error
	DeleteByTransactionID(ctx context.Context, transactionID uuid.UUID) error
}

// MemorySink is a thread-safe in-memory DocumentSink
type MemorySink struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]Document
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{
		docs: make(map[uuid.UUID]Document),
	}
}

// Insert stores the document, replacing any previous one for the same
// transaction.
func (s *MemorySink) Insert(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.TransactionID] = doc
	return nil
}

// DeleteByTransactionID removes the document for a transaction. Deleting a
// missing document is not an error.
func (s *MemorySink) DeleteByTransactionID(ctx context.Context, transactionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, transactionID)
	return nil
}

// Get returns the stored document for a transaction, if any
func (s *MemorySink) Get(transactionID uuid.UUID) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[transactionID]
	return doc, ok
}

// Len returns the number of stored documents
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
