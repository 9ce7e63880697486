package testutil

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gatherly/eventquery"
	"github.com/segmentio/ksuid"

	_ "github.com/gatherly/eventquery/kv/badger"
)

// Categories used by generated event fixtures
var Categories = []string{"Music", "Sports", "Tech", "Food", "Art"}

// NewEventDoc returns a fake event document in the given lifecycle state
func NewEventDoc(state eventquery.EventState) *eventquery.Document {
	start := gofakeit.DateRange(time.Now(), time.Now().Add(30*24*time.Hour))
	doc, err := eventquery.NewDocumentFrom(map[string]any{
		"_id":         ksuid.New().String(),
		"name":        gofakeit.Sentence(3),
		"description": gofakeit.LoremIpsumSentence(8),
		"category":    gofakeit.RandomString(Categories),
		"state":       string(state),
		"start_date":  start.Format(time.RFC3339),
		"end_date":    start.Add(3 * time.Hour).Format(time.RFC3339),
		"created_at":  time.Now().Format(time.RFC3339),
		"interested":  []string{ksuid.New().String()},
		"attending":   []string{ksuid.New().String()},
	})
	if err != nil {
		panic(err)
	}
	return doc
}

// TestDB opens an in-memory database with the event collection registered and
// runs fn against it
func TestDB(fn func(ctx context.Context, db *eventquery.DB)) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := eventquery.Open(ctx, eventquery.Config{
		KVProvider:  "badger",
		Collections: []*eventquery.Collection{eventquery.EventCollection()},
	})
	if err != nil {
		return err
	}
	defer db.Close(ctx)
	fn(ctx, db)
	return nil
}
