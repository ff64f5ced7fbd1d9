package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PostgresStore keeps one collection in a table with a jsonb column.
type PostgresStore struct {
	db    *sql.DB
	table string
}

func NewPostgresStore(db *sql.DB, collection string) (*PostgresStore, error) {
	if !knownCollection(collection) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	return &PostgresStore{db: db, table: collection}, nil
}

func (s *PostgresStore) InsertOne(ctx context.Context, doc Document) (*InsertOneResult, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(withoutID(doc))
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, doc)
		VALUES ($1, $2::jsonb)`, s.table)

	_, err = s.db.ExecContext(ctx, query, id, string(body))
	if err != nil {
		return nil, err
	}

	return &InsertOneResult{Acknowledged: true, InsertedID: id.String()}, nil
}

func (s *PostgresStore) Find(ctx context.Context, filter Filter, opts ...FindOptions) ([]Document, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	o := mergeOptions(opts)
	where, args := whereClause(filter, nil)

	order := "ASC"
	if o.Newest {
		order = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, doc
		FROM %s
		WHERE %s
		ORDER BY seq %s`, s.table, where, order)

	if o.Limit > 0 {
		args = append(args, o.Limit)
		query += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var (
			id  uuid.UUID
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}

		doc := Document{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		doc[IDField] = id.String()

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

func (s *PostgresStore) FindOne(ctx context.Context, filter Filter) (Document, error) {
	docs, err := s.Find(ctx, filter, FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	return docs[0], nil
}

// UpdateOne merges set into the first matching document at the top level.
func (s *PostgresStore) UpdateOne(ctx context.Context, filter Filter, set Document) (*UpdateResult, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(withoutID(set))
	if err != nil {
		return nil, err
	}

	where, args := whereClause(filter, nil)
	args = append(args, string(body))
	patch := fmt.Sprintf("$%d::jsonb", len(args))

	query := fmt.Sprintf(`
		WITH target AS (
			SELECT id, doc FROM %[1]s
			WHERE %[2]s
			ORDER BY seq
			LIMIT 1
			FOR UPDATE
		), updated AS (
			UPDATE %[1]s d
			SET doc = d.doc || %[3]s
			FROM target
			WHERE d.id = target.id AND target.doc <> target.doc || %[3]s
			RETURNING d.id
		)
		SELECT (SELECT count(*) FROM target), (SELECT count(*) FROM updated)`, s.table, where, patch)

	res := &UpdateResult{Acknowledged: true}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&res.MatchedCount, &res.ModifiedCount)
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *PostgresStore) DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	where, args := whereClause(filter, nil)

	query := fmt.Sprintf(`
		DELETE FROM %[1]s
		WHERE id IN (
			SELECT id FROM %[1]s
			WHERE %[2]s
			ORDER BY seq
			LIMIT 1
		)`, s.table, where)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	return &DeleteResult{Acknowledged: true, DeletedCount: rows}, nil
}

// whereClause renders a validated filter. Field names and values are always
// bound as parameters.
func whereClause(filter Filter, args []any) (string, []any) {
	if len(filter) == 0 {
		return "TRUE", args
	}

	clauses := make([]string, 0, len(filter))
	for _, c := range filter {
		if c.Field == IDField {
			args = append(args, c.Value)
			clauses = append(clauses, fmt.Sprintf("id = $%d::uuid", len(args)))
			continue
		}

		args = append(args, c.Field, c.Value)
		field, value := len(args)-1, len(args)

		switch c.Op {
		case OpContains:
			clauses = append(clauses, fmt.Sprintf("strpos(doc->>($%d::text), $%d::text) > 0", field, value))
		case OpContainsFold:
			clauses = append(clauses, fmt.Sprintf("strpos(lower(doc->>($%d::text)), lower($%d::text)) > 0", field, value))
		default:
			clauses = append(clauses, fmt.Sprintf("doc->>($%d::text) = $%d::text", field, value))
		}
	}

	return strings.Join(clauses, " AND "), args
}
