package docstore

import (
	"context"
	"sync"
)

// Recorder wraps a Store and counts the calls made through it.
type Recorder struct {
	Store

	mu    sync.Mutex
	calls map[string]int
}

func NewRecorder(s Store) *Recorder {
	return &Recorder{Store: s, calls: make(map[string]int)}
}

func (r *Recorder) record(op string) {
	r.mu.Lock()
	r.calls[op]++
	r.mu.Unlock()
}

// Calls returns how many times op was called, or the total when op is "".
func (r *Recorder) Calls(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if op != "" {
		return r.calls[op]
	}

	total := 0
	for _, n := range r.calls {
		total += n
	}
	return total
}

func (r *Recorder) InsertOne(ctx context.Context, doc Document) (*InsertOneResult, error) {
	r.record("InsertOne")
	return r.Store.InsertOne(ctx, doc)
}

func (r *Recorder) Find(ctx context.Context, filter Filter, opts ...FindOptions) ([]Document, error) {
	r.record("Find")
	return r.Store.Find(ctx, filter, opts...)
}

func (r *Recorder) FindOne(ctx context.Context, filter Filter) (Document, error) {
	r.record("FindOne")
	return r.Store.FindOne(ctx, filter)
}

func (r *Recorder) UpdateOne(ctx context.Context, filter Filter, set Document) (*UpdateResult, error) {
	r.record("UpdateOne")
	return r.Store.UpdateOne(ctx, filter, set)
}

func (r *Recorder) DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error) {
	r.record("DeleteOne")
	return r.Store.DeleteOne(ctx, filter)
}
