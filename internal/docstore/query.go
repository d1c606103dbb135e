package docstore

import (
	"context"
	"fmt"
	"time"
)

// Queryable document fields. The stores index exactly these.
const (
	FieldID        = "id"
	FieldUserID    = "userId"
	FieldEndDate   = "endDate"
	FieldCreatedAt = "createdAt"
)

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "=="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Filter restricts a query to documents whose Field compares to Value under Op.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// OrderBy names the sort field. Ties are broken by document id in the same direction.
type OrderBy struct {
	Field     string
	Direction Direction
}

// Query describes a filtered, ordered, optionally paginated read.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    OrderBy
	// Limit caps the page size; zero reads everything.
	Limit int
	// After resumes the query after the position a previous page ended at.
	After *Cursor
}

// Result is one page of a query.
type Result struct {
	Documents []Document
	// Last is the resume position of the final document, nil when nothing matched.
	Last    *Cursor
	HasMore bool
}

// Store runs queries against a document collection.
type Store interface {
	Query(ctx context.Context, q Query) (*Result, error)
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindTime
)

var queryableFields = map[string]fieldKind{
	FieldID:        kindString,
	FieldUserID:    kindString,
	FieldEndDate:   kindTime,
	FieldCreatedAt: kindTime,
}

// Validate checks that the query only uses indexed fields with well-typed values.
func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	for _, f := range q.Filters {
		kind, ok := queryableFields[f.Field]
		if !ok {
			return fmt.Errorf("field %q is not queryable", f.Field)
		}
		switch f.Op {
		case OpEq, OpGt, OpGte, OpLt, OpLte:
		default:
			return fmt.Errorf("unsupported operator %q", f.Op)
		}
		switch kind {
		case kindString:
			if _, ok := f.Value.(string); !ok {
				return fmt.Errorf("field %q needs a string value", f.Field)
			}
		case kindTime:
			if _, ok := f.Value.(time.Time); !ok {
				return fmt.Errorf("field %q needs a time value", f.Field)
			}
		}
	}
	if q.OrderBy.Field != "" {
		if queryableFields[q.OrderBy.Field] != kindTime {
			return fmt.Errorf("field %q is not orderable", q.OrderBy.Field)
		}
		if q.OrderBy.Direction != Asc && q.OrderBy.Direction != Desc {
			return fmt.Errorf("unsupported direction %q", q.OrderBy.Direction)
		}
	}
	if q.After != nil {
		if q.OrderBy.Field == "" {
			return fmt.Errorf("%w: resuming requires an order", ErrInvalidCursor)
		}
		if q.After.scope != q.scope() {
			return fmt.Errorf("%w: cursor belongs to a different query", ErrInvalidCursor)
		}
	}
	return nil
}

func (o Op) sql() string {
	if o == OpEq {
		return "="
	}
	return string(o)
}
