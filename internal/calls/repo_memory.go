package calls

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu    sync.Mutex
	calls map[string]Call
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{calls: make(map[string]Call)}
}

func (r *MemoryRepo) Create(ctx context.Context, c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[id]
	if !ok {
		return Call{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) ListByPhone(ctx context.Context, phone string) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.FromPhone == phone {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CallDate.After(out[j].CallDate)
	})
	return out, nil
}

func (r *MemoryRepo) UpdateRecording(ctx context.Context, id string, url *string, duration *int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[id]
	if !ok {
		return ErrNotFound
	}
	c.RecordingURL = url
	c.RecordingDuration = duration
	c.RecordingStatus = status
	r.calls[id] = c
	return nil
}

func (r *MemoryRepo) UpdateTranscription(ctx context.Context, id string, text *string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[id]
	if !ok {
		return ErrNotFound
	}
	c.TranscriptionText = text
	c.TranscriptionStatus = status
	r.calls[id] = c
	return nil
}

func (r *MemoryRepo) UpdateEnrichment(ctx context.Context, id, title, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[id]
	if !ok {
		return ErrNotFound
	}
	c.Title = &title
	c.Summary = &summary
	r.calls[id] = c
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calls[id]; !ok {
		return ErrNotFound
	}
	delete(r.calls, id)
	return nil
}

func (r *MemoryRepo) DeleteByPhone(ctx context.Context, phone string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.calls {
		if c.FromPhone == phone {
			delete(r.calls, id)
			n++
		}
	}
	return n, nil
}
