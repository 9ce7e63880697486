package eventquery

import (
	"sort"

	"github.com/gatherly/eventquery/util"
)

// OrderByDirection indicates whether results should be sorted in ascending or descending order
type OrderByDirection string

const (
	// ASC indicates ascending order
	ASC OrderByDirection = "ASC"
	// DESC indicates descending order
	DESC OrderByDirection = "DESC"
)

// ParseDirection parses a caller supplied direction token. Only the exact
// token "asc" is ascending; anything else is treated as descending rather
// than rejected.
func ParseDirection(token string) OrderByDirection {
	if token == "asc" {
		return ASC
	}
	return DESC
}

// OrderBy orders the result set by a given field in a given direction
type OrderBy struct {
	// Field is the field to sort on
	Field string `json:"field"`
	// Direction is the sort direction
	Direction OrderByDirection `json:"direction"`
}

// BuildSort builds the order-by keys for a query. The tieBreak field always
// leads, descending regardless of the caller's direction, so documents that
// compare equal on every caller key still order deterministically. When the
// caller supplies no fields the fallback field is used in their place.
func BuildSort(tieBreak, fallback string, direction OrderByDirection, fields ...string) []OrderBy {
	orderBy := []OrderBy{{Field: tieBreak, Direction: DESC}}
	if len(fields) == 0 {
		fields = []string{fallback}
	}
	for _, field := range fields {
		orderBy = append(orderBy, OrderBy{Field: field, Direction: direction})
	}
	return orderBy
}

// SortDocuments sorts the documents by the order-by keys in priority order.
// The sort is stable so re-running a query against an unchanged collection
// returns an identical page.
func SortDocuments(documents Documents, orderBy []OrderBy) Documents {
	if len(orderBy) == 0 {
		return documents
	}
	sort.SliceStable(documents, func(i, j int) bool {
		for _, order := range orderBy {
			if documents[i].result.Get(order.Field).Raw == documents[j].result.Get(order.Field).Raw {
				continue
			}
			if order.Direction == DESC {
				return compareField(order.Field, documents[i], documents[j])
			}
			return !compareField(order.Field, documents[i], documents[j])
		}
		return false
	})
	return documents
}

func compareField(field string, i, j *Document) bool {
	iFieldVal := i.result.Get(field)
	jFieldVal := j.result.Get(field)
	switch i.result.Get(field).Value().(type) {
	case bool:
		return iFieldVal.Bool() && !jFieldVal.Bool()
	case float64:
		return iFieldVal.Float() > jFieldVal.Float()
	case string:
		// timestamps order chronologically even when their utc offsets differ;
		// non-date strings fall back to lexical order inside lessThan
		return lessThan(jFieldVal.Value(), iFieldVal.Value())
	default:
		return util.JSONString(iFieldVal.Value()) > util.JSONString(jFieldVal.Value())
	}
}
