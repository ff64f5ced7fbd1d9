package docstore

import (
	"context"
	"errors"
)

var (
	ErrNoDocuments       = errors.New("no documents in result")
	ErrInvalidID         = errors.New("invalid document identifier")
	ErrInvalidField      = errors.New("invalid field name")
	ErrUnknownCollection = errors.New("unknown collection")
)

// IDField is the key under which a document's identifier is exposed.
const IDField = "_id"

const (
	CollectionBlogs    = "blogs"
	CollectionWishList = "wish_list"
	CollectionComments = "comments"
)

// Document is a schemaless record. Values follow encoding/json decoding rules.
type Document map[string]any

// String returns the value of key when it holds a string.
func (d Document) String(key string) (string, bool) {
	s, ok := d[key].(string)
	return s, ok
}

// ID returns the system-assigned identifier, or "" for documents not yet stored.
func (d Document) ID() string {
	id, _ := d.String(IDField)
	return id
}

// Store is the persistence service the resource services talk to. Single
// document operations are atomic; nothing spans documents.
type Store interface {
	InsertOne(ctx context.Context, doc Document) (*InsertOneResult, error)
	Find(ctx context.Context, filter Filter, opts ...FindOptions) ([]Document, error)
	FindOne(ctx context.Context, filter Filter) (Document, error)
	UpdateOne(ctx context.Context, filter Filter, set Document) (*UpdateResult, error)
	DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error)
}

type FindOptions struct {
	// Newest orders by descending insertion order instead of ascending.
	Newest bool
	// Limit caps the number of documents returned. Zero means no limit.
	Limit int
}

type InsertOneResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

func mergeOptions(opts []FindOptions) FindOptions {
	var o FindOptions
	for _, opt := range opts {
		if opt.Newest {
			o.Newest = true
		}
		if opt.Limit > 0 {
			o.Limit = opt.Limit
		}
	}
	return o
}

func knownCollection(name string) bool {
	switch name {
	case CollectionBlogs, CollectionWishList, CollectionComments:
		return true
	}
	return false
}
