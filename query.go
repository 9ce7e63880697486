package eventquery

import (
	"time"

	"github.com/gatherly/eventquery/util"
)

// Query is a paginated query against a collection
type Query struct {
	// Where is a list of where clauses used to filter documents
	Where []Where `json:"where"`
	// OrderBy is the order to return results in, highest priority key first
	OrderBy []OrderBy `json:"order_by"`
	// Page is the 1-based page index of the result set
	Page int `json:"page" validate:"gte=1"`
	// Limit is the page size
	Limit int `json:"limit" validate:"gte=1"`
}

// Validate validates the query and returns a validation error if one exists
func (q Query) Validate() error {
	return util.ValidateStruct(&q)
}

// Page is a single page of documents along with the totals of the filtered
// view it was cut from. The totals and the documents are always derived from
// the same snapshot of the collection.
type Page struct {
	// Documents are the documents that make up the page
	Documents Documents `json:"documents"`
	// TotalElements is the number of documents matching the query across all pages
	TotalElements int `json:"total_elements"`
	// TotalPages is ceil(TotalElements / Limit); 0 when nothing matches
	TotalPages int `json:"total_pages"`
	// Stats are statistics collected while executing the query
	Stats PageStats `json:"stats"`
}

// PageStats are statistics collected from a query returning a page
type PageStats struct {
	// ExecutionTime is the execution time to get the page
	ExecutionTime time.Duration `json:"execution_time"`
}
