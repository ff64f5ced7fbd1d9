package docstore

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

var fieldRX = regexp.MustCompile("^[a-zA-Z0-9_]+$")

type Operator int

const (
	// OpEq matches when the field equals the value exactly.
	OpEq Operator = iota
	// OpContains matches a case-sensitive substring.
	OpContains
	// OpContainsFold matches a case-insensitive substring.
	OpContainsFold
)

type Condition struct {
	Field string
	Op    Operator
	Value string
}

// Filter is a conjunction of conditions. An empty filter matches everything.
type Filter []Condition

func Eq(field, value string) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

func Contains(field, value string) Condition {
	return Condition{Field: field, Op: OpContains, Value: value}
}

func ContainsFold(field, value string) Condition {
	return Condition{Field: field, Op: OpContainsFold, Value: value}
}

func ByID(id uuid.UUID) Condition {
	return Eq(IDField, id.String())
}

// ParseID validates a client supplied identifier.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

func (f Filter) validate() error {
	for _, c := range f {
		if c.Field == IDField {
			if c.Op != OpEq {
				return fmt.Errorf("%w: %s only supports equality", ErrInvalidField, IDField)
			}
			if _, err := ParseID(c.Value); err != nil {
				return err
			}
			continue
		}
		if !fieldRX.MatchString(c.Field) {
			return fmt.Errorf("%w: %q", ErrInvalidField, c.Field)
		}
	}
	return nil
}

// withoutID returns a copy of doc minus the identifier key.
func withoutID(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}
