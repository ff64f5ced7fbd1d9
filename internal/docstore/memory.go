package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	id  string
	doc Document
}

// MemoryStore is a process-local Store with the same matching and ordering
// rules as PostgresStore. Documents are copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertOne(ctx context.Context, doc Document) (*InsertOneResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	stored, err := clone(withoutID(doc))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries = append(s.entries, memoryEntry{id: id.String(), doc: stored})
	s.mu.Unlock()

	return &InsertOneResult{Acknowledged: true, InsertedID: id.String()}, nil
}

func (s *MemoryStore) Find(ctx context.Context, filter Filter, opts ...FindOptions) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}

	o := mergeOptions(opts)

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := []Document{}
	for i := range s.entries {
		e := s.entries[i]
		if o.Newest {
			e = s.entries[len(s.entries)-1-i]
		}

		if !matches(e, filter) {
			continue
		}

		doc, err := clone(e.doc)
		if err != nil {
			return nil, err
		}
		doc[IDField] = e.id
		docs = append(docs, doc)

		if o.Limit > 0 && len(docs) == o.Limit {
			break
		}
	}

	return docs, nil
}

func (s *MemoryStore) FindOne(ctx context.Context, filter Filter) (Document, error) {
	docs, err := s.Find(ctx, filter, FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	return docs[0], nil
}

func (s *MemoryStore) UpdateOne(ctx context.Context, filter Filter, set Document) (*UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}

	patch, err := clone(withoutID(set))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := &UpdateResult{Acknowledged: true}
	for i := range s.entries {
		if !matches(s.entries[i], filter) {
			continue
		}

		res.MatchedCount = 1
		for k, v := range patch {
			if !reflect.DeepEqual(s.entries[i].doc[k], v) {
				res.ModifiedCount = 1
			}
			s.entries[i].doc[k] = v
		}
		break
	}

	return res, nil
}

func (s *MemoryStore) DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if matches(s.entries[i], filter) {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return &DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}

	return &DeleteResult{Acknowledged: true}, nil
}

func matches(e memoryEntry, filter Filter) bool {
	for _, c := range filter {
		var (
			text string
			ok   bool
		)
		if c.Field == IDField {
			text, ok = e.id, true
		} else {
			text, ok = asText(e.doc[c.Field])
		}
		if !ok {
			return false
		}

		switch c.Op {
		case OpContains:
			ok = strings.Contains(text, c.Value)
		case OpContainsFold:
			ok = strings.Contains(strings.ToLower(text), strings.ToLower(c.Value))
		default:
			ok = text == c.Value
		}
		if !ok {
			return false
		}
	}
	return true
}

// asText mirrors the jsonb ->> operator: strings are returned as-is, other
// values as their JSON text, and missing or null values do not match.
func asText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

func clone(doc Document) (Document, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	out := Document{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Document{}
	}

	return out, nil
}
