package eventquery

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gatherly/eventquery/errors"
	"github.com/gatherly/eventquery/util"
	flat2 "github.com/nqd/flat"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Document is a json document belonging to a collection
type Document struct {
	result gjson.Result
}

// NewDocument creates a new empty json document
func NewDocument() *Document {
	parsed := gjson.Parse("{}")
	return &Document{
		result: parsed,
	}
}

// NewDocumentFromBytes creates a new document from the given json bytes
func NewDocumentFromBytes(json []byte) (*Document, error) {
	if !gjson.ValidBytes(json) {
		return nil, errors.New(errors.Validation, "invalid json: %s", string(json))
	}
	d := &Document{
		result: gjson.ParseBytes(json),
	}
	if !d.Valid() {
		return nil, errors.New(errors.Validation, "invalid document")
	}
	return d, nil
}

// NewDocumentFrom creates a new document from the given value - the value must be json compatible
func NewDocumentFrom(value any) (*Document, error) {
	bits, err := json.Marshal(value)
	if err != nil {
		return nil, errors.New(errors.Validation, "failed to json encode value: %#v", value)
	}
	return NewDocumentFromBytes(bits)
}

// UnmarshalJSON satisfies the json Unmarshaler interface
func (d *Document) UnmarshalJSON(bytes []byte) error {
	doc, err := NewDocumentFromBytes(bytes)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

// MarshalJSON satisfies the json Marshaler interface
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.Bytes(), nil
}

// Valid returns whether the document is valid
func (d *Document) Valid() bool {
	return gjson.ValidBytes(d.Bytes()) && !d.result.IsArray()
}

// String returns the document as a json string
func (d *Document) String() string {
	return d.result.Raw
}

// Bytes returns the document as json bytes
func (d *Document) Bytes() []byte {
	return []byte(d.result.Raw)
}

// Value returns the document as a map
func (d *Document) Value() map[string]any {
	return cast.ToStringMap(d.result.Value())
}

// Clone allocates a new document with identical values
func (d *Document) Clone() *Document {
	raw := d.result.Raw
	return &Document{result: gjson.Parse(raw)}
}

// Get gets a field on the document. Get has GJSON syntax support and supports dot notation
func (d *Document) Get(field string) any {
	return d.result.Get(field).Value()
}

// GetString gets a string field value on the document
func (d *Document) GetString(field string) string {
	return d.result.Get(field).String()
}

// GetBool gets a bool field value on the document
func (d *Document) GetBool(field string) bool {
	return cast.ToBool(d.Get(field))
}

// GetFloat gets a float field value on the document
func (d *Document) GetFloat(field string) float64 {
	return cast.ToFloat64(d.Get(field))
}

// GetArray gets an array field on the document
func (d *Document) GetArray(field string) []any {
	return cast.ToSlice(d.Get(field))
}

// Exists returns whether the field is present on the document
func (d *Document) Exists(field string) bool {
	return d.result.Get(field).Exists()
}

// Set sets a field on the document. Dot notation is supported.
func (d *Document) Set(field string, val any) error {
	return d.SetAll(map[string]any{
		field: val,
	})
}

func (d *Document) set(field string, val any) error {
	var (
		result string
		err    error
	)
	switch val := val.(type) {
	case gjson.Result:
		result, err = sjson.Set(d.result.Raw, field, val.Value())
	case []byte:
		result, err = sjson.SetRaw(d.result.Raw, field, string(val))
	default:
		result, err = sjson.Set(d.result.Raw, field, val)
	}
	if err != nil {
		return err
	}
	if !gjson.Valid(result) {
		return errors.New(errors.Validation, "invalid document")
	}
	d.result = gjson.Parse(result)
	return nil
}

// SetAll sets all fields on the document. Dot notation is supported.
func (d *Document) SetAll(values map[string]any) error {
	var err error
	for k, v := range values {
		err = d.set(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Merge merges the document with the provided document. This is not an overwrite.
func (d *Document) Merge(with *Document) error {
	if with == nil || !with.Valid() {
		return errors.New(errors.Validation, "invalid document")
	}
	withMap := with.Value()
	flattened, err := flat2.Flatten(withMap, nil)
	if err != nil {
		return err
	}
	return d.SetAll(flattened)
}

// Del deletes a field from the document
func (d *Document) Del(field string) error {
	return d.DelAll(field)
}

// DelAll deletes fields from the document
func (d *Document) DelAll(fields ...string) error {
	for _, field := range fields {
		result, err := sjson.Delete(d.result.Raw, field)
		if err != nil {
			return err
		}
		d.result = gjson.Parse(result)
	}
	return nil
}

// Scan scans the json document into the value based on json tags
func (d *Document) Scan(value any) error {
	return util.Decode(d.Value(), &value)
}

// Encode encodes the json document to the io writer
func (d *Document) Encode(w io.Writer) error {
	_, err := w.Write(d.Bytes())
	if err != nil {
		return errors.Wrap(err, 0, "failed to encode document")
	}
	return nil
}

// Where executes the where clauses against the document and returns true if it passes every clause
func (d *Document) Where(wheres []Where) (bool, error) {
	for _, w := range wheres {
		if len(w.Or) > 0 {
			matched := false
			for _, or := range w.Or {
				pass, err := d.Where([]Where{or})
				if err != nil {
					return false, err
				}
				if pass {
					matched = true
					break
				}
			}
			if !matched {
				return false, nil
			}
			continue
		}
		switch w.Op {
		case WhereOpEq:
			if cast.ToString(d.Get(w.Field)) != cast.ToString(w.Value) {
				return false, nil
			}
		case WhereOpContains:
			// plain substring matching on lowercased values - caller supplied
			// text is never compiled into a pattern
			if !strings.Contains(strings.ToLower(d.GetString(w.Field)), strings.ToLower(cast.ToString(w.Value))) {
				return false, nil
			}
		case WhereOpGte:
			if lessThan(d.Get(w.Field), w.Value) {
				return false, nil
			}
		case WhereOpLte:
			if lessThan(w.Value, d.Get(w.Field)) {
				return false, nil
			}
		case WhereOpIn:
			values := cast.ToStringSlice(w.Value)
			if !lo.Contains(values, cast.ToString(d.Get(w.Field))) {
				return false, nil
			}
		case WhereOpHasAny:
			members := cast.ToStringSlice(d.Get(w.Field))
			matched := false
			for _, v := range cast.ToStringSlice(w.Value) {
				if lo.Contains(members, v) {
					matched = true
					break
				}
			}
			if !matched {
				return false, nil
			}
		default:
			return false, errors.New(errors.Validation, "invalid operator: '%s'", w.Op)
		}
	}
	return true, nil
}

// lessThan orders two field values: timestamps compare as time, numbers as
// floats, everything else as strings.
func lessThan(a, b any) bool {
	at, aterr := cast.ToTimeE(a)
	bt, bterr := cast.ToTimeE(b)
	if aterr == nil && bterr == nil {
		return at.Before(bt)
	}
	af, aferr := cast.ToFloat64E(a)
	bf, bferr := cast.ToFloat64E(b)
	if aferr == nil && bferr == nil {
		return af < bf
	}
	return cast.ToString(a) < cast.ToString(b)
}

// Documents is an array of documents
type Documents []*Document

// Slice slices the documents into a subarray of documents
func (documents Documents) Slice(start, end int) Documents {
	return lo.Slice[*Document](documents, start, end)
}

// Filter applies the filter function against the documents
func (documents Documents) Filter(predicate func(document *Document, i int) bool) Documents {
	return lo.Filter[*Document](documents, predicate)
}

// Map applies the mapper function against the documents
func (documents Documents) Map(mapper func(t *Document, i int) *Document) Documents {
	return lo.Map[*Document, *Document](documents, mapper)
}

// ForEach applies the function to each document in the documents
func (documents Documents) ForEach(fn func(next *Document, i int)) {
	lo.ForEach[*Document](documents, fn)
}
