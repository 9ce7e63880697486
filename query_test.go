package eventquery_test

import (
	"context"
	"testing"

	"github.com/gatherly/eventquery"
	"github.com/gatherly/eventquery/errors"
	"github.com/gatherly/eventquery/testutil"
	"github.com/stretchr/testify/assert"
)

func seedPublished(ctx context.Context, t *testing.T, db *eventquery.DB, count int) {
	t.Helper()
	var docs eventquery.Documents
	for i := 0; i < count; i++ {
		docs = append(docs, testutil.NewEventDoc(eventquery.EventPublished))
	}
	assert.NoError(t, db.Import(ctx, "event", docs))
}

func TestQueryPagination(t *testing.T) {
	assert.NoError(t, testutil.TestDB(func(ctx context.Context, db *eventquery.DB) {
		seedPublished(ctx, t, db, 25)

		t.Run("first page", func(t *testing.T) {
			page, err := db.Query(ctx, "event", eventquery.Query{Page: 1, Limit: 10})
			assert.NoError(t, err)
			assert.Len(t, page.Documents, 10)
			assert.Equal(t, 25, page.TotalElements)
			assert.Equal(t, 3, page.TotalPages)
		})
		t.Run("last partial page", func(t *testing.T) {
			page, err := db.Query(ctx, "event", eventquery.Query{Page: 3, Limit: 10})
			assert.NoError(t, err)
			assert.Len(t, page.Documents, 5)
			assert.Equal(t, 25, page.TotalElements)
			assert.Equal(t, 3, page.TotalPages)
		})
		t.Run("page past the end keeps totals", func(t *testing.T) {
			page, err := db.Query(ctx, "event", eventquery.Query{Page: 4, Limit: 10})
			assert.NoError(t, err)
			assert.Len(t, page.Documents, 0)
			assert.Equal(t, 25, page.TotalElements)
			assert.Equal(t, 3, page.TotalPages)
		})
		t.Run("total pages is ceil of totals over limit", func(t *testing.T) {
			page, err := db.Query(ctx, "event", eventquery.Query{Page: 1, Limit: 7})
			assert.NoError(t, err)
			assert.Equal(t, 25, page.TotalElements)
			assert.Equal(t, 4, page.TotalPages)
		})
		t.Run("no criteria returns the full sorted view", func(t *testing.T) {
			page, err := db.Query(ctx, "event", eventquery.Query{
				OrderBy: eventquery.BuildSort(eventquery.FieldPriority, eventquery.FieldStartDate, eventquery.ASC, eventquery.FieldStartDate),
				Page:    1,
				Limit:   25,
			})
			assert.NoError(t, err)
			assert.Len(t, page.Documents, 25)
			for i := 1; i < len(page.Documents); i++ {
				prev := page.Documents[i-1].GetString(eventquery.FieldStartDate)
				next := page.Documents[i].GetString(eventquery.FieldStartDate)
				assert.LessOrEqual(t, prev, next)
			}
		})
		t.Run("idempotent against an unchanged collection", func(t *testing.T) {
			query := eventquery.Query{
				OrderBy: eventquery.BuildSort(eventquery.FieldPriority, eventquery.FieldStartDate, eventquery.DESC),
				Page:    2,
				Limit:   10,
			}
			first, err := db.Query(ctx, "event", query)
			assert.NoError(t, err)
			second, err := db.Query(ctx, "event", query)
			assert.NoError(t, err)
			assert.Equal(t, first.TotalElements, second.TotalElements)
			assert.Equal(t, first.TotalPages, second.TotalPages)
			assert.Equal(t, len(first.Documents), len(second.Documents))
			for i := range first.Documents {
				assert.Equal(t, first.Documents[i].GetString("_id"), second.Documents[i].GetString("_id"))
			}
		})
		t.Run("empty match short circuits", func(t *testing.T) {
			page, err := db.Query(ctx, "event", eventquery.Query{
				Where: eventquery.NewFilter().In(eventquery.FieldID, []string{}).Wheres(),
				Page:  1,
				Limit: 10,
			})
			assert.NoError(t, err)
			assert.Len(t, page.Documents, 0)
			assert.Equal(t, 0, page.TotalElements)
			assert.Equal(t, 0, page.TotalPages)
		})
	}))
}

func TestQueryValidation(t *testing.T) {
	assert.NoError(t, testutil.TestDB(func(ctx context.Context, db *eventquery.DB) {
		t.Run("page below one", func(t *testing.T) {
			_, err := db.Query(ctx, "event", eventquery.Query{Page: 0, Limit: 10})
			assert.Error(t, err)
			assert.Equal(t, errors.Validation, errors.Extract(err).Code)
		})
		t.Run("non positive limit", func(t *testing.T) {
			_, err := db.Query(ctx, "event", eventquery.Query{Page: 1, Limit: 0})
			assert.Error(t, err)
			assert.Equal(t, errors.Validation, errors.Extract(err).Code)

			_, err = db.Query(ctx, "event", eventquery.Query{Page: 1, Limit: -5})
			assert.Error(t, err)
			assert.Equal(t, errors.Validation, errors.Extract(err).Code)
		})
		t.Run("unregistered collection", func(t *testing.T) {
			_, err := db.Query(ctx, "nope", eventquery.Query{Page: 1, Limit: 10})
			assert.Error(t, err)
			assert.Equal(t, errors.Validation, errors.Extract(err).Code)
		})
		t.Run("cancelled context surfaces as unavailable", func(t *testing.T) {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := db.Query(cancelled, "event", eventquery.Query{Page: 1, Limit: 10})
			assert.Error(t, err)
			assert.Equal(t, errors.Unavailable, errors.Extract(err).Code)
		})
	}))
}

func TestQueryConsistentTotals(t *testing.T) {
	assert.NoError(t, testutil.TestDB(func(ctx context.Context, db *eventquery.DB) {
		seedPublished(ctx, t, db, 12)
		for _, limit := range []int{1, 3, 5, 12, 50} {
			page, err := db.Query(ctx, "event", eventquery.Query{Page: 1, Limit: limit})
			assert.NoError(t, err)
			assert.Equal(t, 12, page.TotalElements)
			expected := (12 + limit - 1) / limit
			assert.Equal(t, expected, page.TotalPages)
		}
	}))
}
