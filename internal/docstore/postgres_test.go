package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogsite/internal/common"
)

func TestPostgresStore(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)

	runStoreTests(t, func(t *testing.T) Store {
		_, err := db.Exec("TRUNCATE blogs RESTART IDENTITY")
		require.NoError(t, err)

		s, err := NewPostgresStore(db, CollectionBlogs)
		require.NoError(t, err)

		return s
	})
}

func TestNewPostgresStore_UnknownCollection(t *testing.T) {
	_, err := NewPostgresStore(nil, "users; --")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestWhereClause(t *testing.T) {
	testCases := []struct {
		name     string
		filter   Filter
		want     string
		wantArgs []any
	}{
		{
			name:   "empty",
			filter: nil,
			want:   "TRUE",
		},
		{
			name:     "id and owner",
			filter:   Filter{Eq(IDField, "0190b0f2-7c1e-7a3b-9d1e-3f2a1b4c5d6e"), Eq("wishLIstEmail", "a@x.com")},
			want:     "id = $1::uuid AND doc->>($2::text) = $3::text",
			wantArgs: []any{"0190b0f2-7c1e-7a3b-9d1e-3f2a1b4c5d6e", "wishLIstEmail", "a@x.com"},
		},
		{
			name:     "case-insensitive title",
			filter:   Filter{ContainsFold("title", "cat")},
			want:     "strpos(lower(doc->>($1::text)), lower($2::text)) > 0",
			wantArgs: []any{"title", "cat"},
		},
		{
			name:     "category",
			filter:   Filter{Contains("select", "tech")},
			want:     "strpos(doc->>($1::text), $2::text) > 0",
			wantArgs: []any{"select", "tech"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, args := whereClause(tc.filter, nil)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}
