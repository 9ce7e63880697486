package eventquery

import (
	"strings"
	"time"
)

// WhereOp is an operator used to compare a value to a document's field value in a where clause
type WhereOp string

const (
	// WhereOpEq matches on equality
	WhereOpEq WhereOp = "eq"
	// WhereOpContains matches on text containing a substring (case-insensitive).
	// The caller's text is compared with plain substring matching - it is never
	// compiled into a pattern, so pattern metacharacters are inert.
	WhereOpContains WhereOp = "contains"
	// WhereOpGte matches on greater than or equal to
	WhereOpGte WhereOp = "gte"
	// WhereOpLte matches on less than or equal to
	WhereOpLte WhereOp = "lte"
	// WhereOpIn matches on the field value being contained in a list.
	// An empty list matches nothing.
	WhereOpIn WhereOp = "in"
	// WhereOpHasAny matches when any element of the document's array field is
	// contained in the list
	WhereOpHasAny WhereOp = "hasAny"
)

// Where is a field-level filter applied against a query. When Or is non-empty
// the clause matches if any of its sub-clauses match and Field/Op/Value are
// ignored.
type Where struct {
	// Field is the field to compare against the value
	Field string `json:"field"`
	// Op is the operator used to compare the field against the value
	Op WhereOp `json:"op"`
	// Value is the value to compare against the document's field value
	Value any `json:"value"`
	// Or is a group of sub-clauses combined with logical OR
	Or []Where `json:"or,omitempty"`
}

// Filter is an immutable set of where clauses combined conjunctively at
// evaluation time. Every constraint method returns an extended copy, so a
// Filter may be shared freely; constraints supplied with an absent/sentinel
// value leave the Filter unchanged rather than over-constraining the result.
type Filter struct {
	wheres []Where
}

// NewFilter returns an empty filter that matches every document
func NewFilter() Filter {
	return Filter{}
}

func (f Filter) add(w Where) Filter {
	wheres := make([]Where, len(f.wheres), len(f.wheres)+1)
	copy(wheres, f.wheres)
	return Filter{wheres: append(wheres, w)}
}

// Wheres returns the accumulated where clauses
func (f Filter) Wheres() []Where {
	wheres := make([]Where, len(f.wheres))
	copy(wheres, f.wheres)
	return wheres
}

// MatchText adds a case-insensitive substring constraint on the field.
// Blank text is a no-op.
func (f Filter) MatchText(field, text string) Filter {
	if strings.TrimSpace(text) == "" {
		return f
	}
	return f.add(Where{Field: field, Op: WhereOpContains, Value: text})
}

// OnOrAfter adds an inclusive lower bound on the field. The zero time is the
// "no bound" sentinel and is a no-op.
func (f Filter) OnOrAfter(field string, t time.Time) Filter {
	if t.IsZero() {
		return f
	}
	return f.add(Where{Field: field, Op: WhereOpGte, Value: t.Format(time.RFC3339)})
}

// OnOrBefore adds an inclusive upper bound on the field. The zero time is the
// "no bound" sentinel and is a no-op.
func (f Filter) OnOrBefore(field string, t time.Time) Filter {
	if t.IsZero() {
		return f
	}
	return f.add(Where{Field: field, Op: WhereOpLte, Value: t.Format(time.RFC3339)})
}

// Eq adds an equality constraint on an optional field. A nil value means
// "don't filter on this field".
func (f Filter) Eq(field string, value *string) Filter {
	if value == nil {
		return f
	}
	return f.add(Where{Field: field, Op: WhereOpEq, Value: *value})
}

// In restricts the field's value to the given set. A nil set is a no-op; an
// explicitly empty, non-nil set is a literal "match nothing" request and is
// honored as such.
func (f Filter) In(field string, values []string) Filter {
	if values == nil {
		return f
	}
	return f.add(Where{Field: field, Op: WhereOpIn, Value: values})
}

// AnyIn adds an element-match constraint: the document passes when any
// element of its array field is contained in the given set. A nil or empty
// set is a no-op - an empty relation set must not exclude everything.
func (f Filter) AnyIn(field string, values []string) Filter {
	if len(values) == 0 {
		return f
	}
	return f.add(Where{Field: field, Op: WhereOpHasAny, Value: values})
}

// AnyOf adds a clause matching documents that pass any of the given
// sub-clauses. No sub-clauses is a no-op.
func (f Filter) AnyOf(wheres ...Where) Filter {
	if len(wheres) == 0 {
		return f
	}
	return f.add(Where{Or: wheres})
}

// StatePolicy names the default widening applied to a lifecycle state filter:
// when the caller supplies no explicit state, only the Visible states may
// surface through the unrestricted query path.
type StatePolicy struct {
	// Field is the state field
	Field string
	// Visible are the states matched when no explicit state is given
	Visible []string
}

// State filters on a lifecycle state field. An explicit value filters to
// exactly that state; an absent (nil) value falls back to the policy's
// visible set instead of "no filter".
func (f Filter) State(value *string, policy StatePolicy) Filter {
	if value != nil {
		return f.add(Where{Field: policy.Field, Op: WhereOpEq, Value: *value})
	}
	return f.add(Where{Field: policy.Field, Op: WhereOpIn, Value: policy.Visible})
}

// Engagement selects which nested collections an EngagedBy constraint
// searches: a single field matches that collection only, multiple fields
// match when any of them contains a related id.
type Engagement struct {
	Fields []string
}

// EngagedBy adds a constraint matching documents where a related id appears
// in the engagement's nested collection(s). An empty id set is a strict
// no-op.
func (f Filter) EngagedBy(ids []string, engagement Engagement) Filter {
	if len(ids) == 0 || len(engagement.Fields) == 0 {
		return f
	}
	if len(engagement.Fields) == 1 {
		return f.AnyIn(engagement.Fields[0], ids)
	}
	var group []Where
	for _, field := range engagement.Fields {
		group = append(group, Where{Field: field, Op: WhereOpHasAny, Value: ids})
	}
	return f.AnyOf(group...)
}
