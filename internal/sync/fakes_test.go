package sync_test

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/pagesync/internal/contentreader"
	"git.home.luguber.info/inful/pagesync/internal/page"
	"git.home.luguber.info/inful/pagesync/internal/repository"
)

// fakeRepository is an in-memory Repository, ported from the teacher's
// storage.MockStore pattern: a guarded map plus simple call tracking.
type fakeRepository struct {
	mu         sync.Mutex
	pages      map[string]page.Page
	failSave   map[string]bool
	failDelete map[string]bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{pages: make(map[string]page.Page)}
}

func (r *fakeRepository) GetByIdentifier(_ context.Context, identifier string) (page.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pages {
		if p.Identifier == identifier {
			return p, nil
		}
	}
	return page.Page{}, repository.ErrNotFound
}

func (r *fakeRepository) GetByFilename(_ context.Context, filename string) (page.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[filename]
	if !ok {
		return page.Page{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepository) GetAll(_ context.Context) ([]page.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]page.Page, 0, len(r.pages))
	for _, p := range r.pages {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepository) Save(_ context.Context, p page.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave[p.Filename] {
		return errFake
	}
	r.pages[p.Filename] = p
	return nil
}

func (r *fakeRepository) Delete(_ context.Context, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete[filename] {
		return errFake
	}
	delete(r.pages, filename)
	return nil
}

func (r *fakeRepository) Close() error { return nil }

var errFake = &fakeError{"fake repository failure"}

type fakeError struct{ msg string }

func (e *fakeError) Error() string { return e.msg }

// fakeReader is an in-memory content reader.
type fakeReader struct {
	mu    sync.Mutex
	files map[string]string
	meta  map[string]contentreader.Metadata
}

func newFakeReader() *fakeReader {
	return &fakeReader{files: make(map[string]string), meta: make(map[string]contentreader.Metadata)}
}

func (r *fakeReader) put(absPath, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[absPath] = content
}

func (r *fakeReader) Read(_ context.Context, path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	content, ok := r.files[path]
	if !ok {
		return nil, errFake
	}
	return []byte(content), nil
}

func (r *fakeReader) Metadata(_ context.Context, path string) (contentreader.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.meta[path]; ok {
		return m, nil
	}
	modified := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return contentreader.Metadata{Modified: &modified, Created: &modified}, nil
}

func (r *fakeReader) ListMarkdown(_ context.Context, _ string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.files))
	for p := range r.files {
		out = append(out, p)
	}
	return out, nil
}

// fakeNotifier counts how many times Notify was called.
type fakeNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *fakeNotifier) Notify(_ context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
}

func (n *fakeNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}
