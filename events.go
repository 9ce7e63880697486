package eventquery

import (
	"context"
	"time"
)

// EventState is the lifecycle state of an event
type EventState string

const (
	// EventDraft is an event still being authored - never visible through the
	// default query path
	EventDraft EventState = "Draft"
	// EventCancelled is an event cancelled by its organizer
	EventCancelled EventState = "Cancelled"
	// EventArchived is a past event kept for history
	EventArchived EventState = "Archived"
	// EventPublished is a live, publicly visible event
	EventPublished EventState = "Published"
)

// statePriority ranks lifecycle states for the mandatory sort tie-break:
// higher priority states surface first when documents otherwise compare equal
var statePriority = map[EventState]int{
	EventPublished: 3,
	EventArchived:  2,
	EventCancelled: 1,
	EventDraft:     0,
}

// Event document fields
const (
	EventCollectionName = "event"

	FieldID         = "_id"
	FieldName       = "name"
	FieldCategory   = "category"
	FieldState      = "state"
	FieldPriority   = "priority"
	FieldStartDate  = "start_date"
	FieldEndDate    = "end_date"
	FieldInterested = "interested"
	FieldAttending  = "attending"
)

// DefaultStatePolicy hides internal/incomplete events from the default query
// path: with no explicit state filter, only published and archived events
// surface.
var DefaultStatePolicy = StatePolicy{
	Field:   FieldState,
	Visible: []string{string(EventPublished), string(EventArchived)},
}

// EngagementKind selects which engagement list a friends filter searches
type EngagementKind string

const (
	// EngagementInterested matches the interested list only
	EngagementInterested EngagementKind = "interested"
	// EngagementAttending matches the attending list only
	EngagementAttending EngagementKind = "attending"
)

// engagementFor maps the optional discriminator to the nested collections to
// search: a specific kind searches that list only, an absent kind matches
// either list.
func engagementFor(kind *EngagementKind) Engagement {
	if kind == nil {
		return Engagement{Fields: []string{FieldInterested, FieldAttending}}
	}
	switch *kind {
	case EngagementAttending:
		return Engagement{Fields: []string{FieldAttending}}
	default:
		return Engagement{Fields: []string{FieldInterested}}
	}
}

const eventSchema = `
$schema: http://json-schema.org/draft-07/schema#
title: event
type: object
required:
  - _id
  - name
  - state
  - start_date
properties:
  _id:
    type: string
  name:
    type: string
  description:
    type: string
  category:
    type: string
  state:
    type: string
    enum:
      - Draft
      - Cancelled
      - Archived
      - Published
  priority:
    type: integer
  start_date:
    type: string
  end_date:
    type: string
  created_at:
    type: string
  interested:
    type: array
    items:
      type: string
  attending:
    type: array
    items:
      type: string
`

// SetEventPriority derives the sort tie-break priority from the event's
// lifecycle state on every write
func SetEventPriority(ctx context.Context, document *Document) error {
	state := EventState(document.GetString(FieldState))
	return document.Set(FieldPriority, statePriority[state])
}

// EventCollection returns the event collection definition
func EventCollection() *Collection {
	return NewCollection(EventCollectionName,
		WithSchema([]byte(eventSchema)),
		WithTrigger(SetEventPriority),
	)
}

// EventSearch is the caller criteria for searching events. Zero values mean
// "don't filter": blank text, zero times, nil pointers and nil slices add no
// constraint, while an empty non-nil IDs slice is a literal "match nothing"
// request.
type EventSearch struct {
	// Text matches the event name case-insensitively
	Text string `json:"text"`
	// From is the inclusive lower bound on the event's start date
	From time.Time `json:"from"`
	// To is the inclusive upper bound on the event's end date
	To time.Time `json:"to"`
	// Category filters to an exact category when present
	Category *string `json:"category"`
	// State filters to an exact lifecycle state when present; when absent the
	// DefaultStatePolicy applies
	State *string `json:"state"`
	// IDs restricts results to the given event ids
	IDs []string `json:"ids"`
	// FriendIDs restricts results to events the given users engage with
	FriendIDs []string `json:"friend_ids"`
	// Engagement narrows the friends filter to one engagement list
	Engagement *EngagementKind `json:"engagement"`
	// OrderBy are the caller's sort fields in priority order
	OrderBy []string `json:"order_by"`
	// Direction is the sort direction token; only "asc" sorts ascending
	Direction string `json:"direction"`
	// Page is the 1-based page index
	Page int `json:"page"`
	// Limit is the page size
	Limit int `json:"limit"`
}

// Query assembles the search criteria into a paginated query: filters and
// sort keys are built by the generic builders, nothing else is computed here
func (s EventSearch) Query() Query {
	filter := NewFilter().
		MatchText(FieldName, s.Text).
		OnOrAfter(FieldStartDate, s.From).
		OnOrBefore(FieldEndDate, s.To).
		Eq(FieldCategory, s.Category).
		State(s.State, DefaultStatePolicy).
		In(FieldID, s.IDs).
		EngagedBy(s.FriendIDs, engagementFor(s.Engagement))
	return Query{
		Where:   filter.Wheres(),
		OrderBy: BuildSort(FieldPriority, FieldStartDate, ParseDirection(s.Direction), s.OrderBy...),
		Page:    s.Page,
		Limit:   s.Limit,
	}
}

// SearchEvents executes the event search against the event collection
func (d *DB) SearchEvents(ctx context.Context, search EventSearch) (Page, error) {
	return d.Query(ctx, EventCollectionName, search.Query())
}
