package timesheet

import (
	"context"
	"sync"

	"github.com/weektally/weektally/pkg/week"
)

// RepositoryStub is an in-memory Repository for service and handler tests.
type RepositoryStub struct {
	mu        sync.RWMutex
	documents map[week.Key]Document

	// Optional injected failures, returned by the corresponding operation.
	GetErr    error
	UpsertErr error
	DeleteErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		documents: make(map[week.Key]Document),
	}
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.documents = make(map[week.Key]Document)
	r.GetErr = nil
	r.UpsertErr = nil
	r.DeleteErr = nil
}

func (r *RepositoryStub) GetAll(ctx context.Context) (map[week.Key]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	documents := make(map[week.Key]Document, len(r.documents))
	for key, doc := range r.documents {
		documents[key] = append(Document(nil), doc...)
	}
	return documents, nil
}

func (r *RepositoryStub) Get(ctx context.Context, key week.Key) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	doc, ok := r.documents[key]
	if !ok {
		return nil, ErrTimesheetNotFound
	}
	return append(Document(nil), doc...), nil
}

func (r *RepositoryStub) Upsert(ctx context.Context, key week.Key, doc Document) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpsertErr != nil {
		return nil, r.UpsertErr
	}
	stored := append(Document(nil), doc...)
	r.documents[key] = stored
	return append(Document(nil), stored...), nil
}

func (r *RepositoryStub) Delete(ctx context.Context, key week.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	if _, ok := r.documents[key]; !ok {
		return ErrTimesheetNotFound
	}
	delete(r.documents, key)
	return nil
}
