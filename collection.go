package eventquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatherly/eventquery/errors"
	"github.com/gatherly/eventquery/util"
	"github.com/xeipuuv/gojsonschema"
)

// Trigger mutates a document before it is persisted (derived fields,
// defaults). Triggers run in registration order.
type Trigger func(ctx context.Context, document *Document) error

// Collection is a named set of documents with an optional json schema and
// write triggers
type Collection struct {
	name          string
	primaryKey    string
	schemaContent []byte
	schema        *gojsonschema.Schema
	triggers      []Trigger
}

// CollectionOpt configures a collection
type CollectionOpt func(*Collection)

// NewCollection creates a new collection definition. The primary key defaults
// to "_id".
func NewCollection(name string, opts ...CollectionOpt) *Collection {
	c := &Collection{
		name:       name,
		primaryKey: "_id",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithPrimaryKey overrides the collection's primary key field
func WithPrimaryKey(field string) CollectionOpt {
	return func(c *Collection) {
		c.primaryKey = field
	}
}

// WithSchema sets the collection's json schema (yaml or json content).
// Documents failing the schema are rejected on write.
func WithSchema(content []byte) CollectionOpt {
	return func(c *Collection) {
		c.schemaContent = content
	}
}

// WithTrigger appends a write trigger to the collection
func WithTrigger(trigger Trigger) CollectionOpt {
	return func(c *Collection) {
		c.triggers = append(c.triggers, trigger)
	}
}

// Name returns the collection's name
func (c *Collection) Name() string {
	return c.name
}

// PrimaryKey returns the collection's primary key field
func (c *Collection) PrimaryKey() string {
	return c.primaryKey
}

func (c *Collection) compileSchema() error {
	if len(c.schemaContent) == 0 {
		return nil
	}
	jsonContent, err := util.YAMLToJSON(c.schemaContent)
	if err != nil {
		return errors.Wrap(err, errors.Validation, "invalid schema for collection '%s'", c.name)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonContent))
	if err != nil {
		return errors.Wrap(err, errors.Validation, "invalid schema for collection '%s'", c.name)
	}
	c.schema = schema
	return nil
}

// ValidateDocument validates the document against the collection's schema (if any)
func (c *Collection) ValidateDocument(document *Document) error {
	if document == nil || !document.Valid() {
		return errors.New(errors.Validation, "%s: invalid document", c.name)
	}
	if c.schema == nil {
		return nil
	}
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(document.Bytes()))
	if err != nil {
		return errors.Wrap(err, errors.Validation, "%s: failed to validate document", c.name)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return errors.New(errors.Validation, "%s: invalid document: %s", c.name, strings.Join(msgs, ", "))
	}
	return nil
}

func (c *Collection) prefix() []byte {
	return []byte(fmt.Sprintf("collection.%s.", c.name))
}

func (c *Collection) key(id string) []byte {
	return []byte(fmt.Sprintf("collection.%s.%s", c.name, id))
}
