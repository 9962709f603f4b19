package docstore

import (
	"errors"
	"regexp"
)

// Record is a single JSON-like document.
type Record map[string]any

// Op is a comparison operator usable in a Filter.
type Op string

const (
	OpEqual         Op = "=="
	OpLess          Op = "<"
	OpLessEqual     Op = "<="
	OpGreater       Op = ">"
	OpGreaterEqual  Op = ">="
	OpArrayContains Op = "array-contains"
)

// Filter restricts a query to documents whose Field compares to Value.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Order sorts query results by a field.
type Order struct {
	Field string
	Desc  bool
}

// Query describes a simple collection query. A zero Limit means no limit.
type Query struct {
	Filters []Filter
	OrderBy *Order
	Limit   int
}

// Where is a shorthand for building a single-filter query.
func Where(field string, op Op, value any) Query {
	return Query{Filters: []Filter{{Field: field, Op: op, Value: value}}}
}

// MaxDocumentBytes mirrors the hosted store's per-document size limit.
const MaxDocumentBytes = 1 << 20

var (
	ErrUnavailable      = errors.New("document store unavailable")
	ErrNotFound         = errors.New("document not found")
	ErrDocumentTooLarge = errors.New("document exceeds size limit")
	ErrInvalidQuery     = errors.New("invalid query")
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

func validateQuery(q Query) error {
	for _, f := range q.Filters {
		if !fieldPattern.MatchString(f.Field) {
			return errors.Join(ErrInvalidQuery, errors.New("bad field "+f.Field))
		}
		switch f.Op {
		case OpEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpArrayContains:
		default:
			return errors.Join(ErrInvalidQuery, errors.New("unsupported operator "+string(f.Op)))
		}
	}
	if q.OrderBy != nil && !fieldPattern.MatchString(q.OrderBy.Field) {
		return errors.Join(ErrInvalidQuery, errors.New("bad order field "+q.OrderBy.Field))
	}
	if q.Limit < 0 {
		return errors.Join(ErrInvalidQuery, errors.New("negative limit"))
	}
	return nil
}
