package eventquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument(t *testing.T) {
	t.Run("from bytes rejects invalid json", func(t *testing.T) {
		_, err := NewDocumentFromBytes([]byte("{not json"))
		assert.Error(t, err)
	})
	t.Run("from bytes rejects arrays", func(t *testing.T) {
		_, err := NewDocumentFromBytes([]byte(`[{"a":1}]`))
		assert.Error(t, err)
	})
	t.Run("get and set with dot notation", func(t *testing.T) {
		doc := NewDocument()
		assert.NoError(t, doc.Set("organizer.name", "sam"))
		assert.Equal(t, "sam", doc.GetString("organizer.name"))
		assert.True(t, doc.Exists("organizer.name"))
		assert.False(t, doc.Exists("organizer.email"))
	})
	t.Run("typed getters", func(t *testing.T) {
		doc := testDoc(t, map[string]any{
			"count":  float64(3),
			"open":   true,
			"labels": []string{"a", "b"},
		})
		assert.Equal(t, float64(3), doc.GetFloat("count"))
		assert.True(t, doc.GetBool("open"))
		assert.Len(t, doc.GetArray("labels"), 2)
	})
	t.Run("clone is independent", func(t *testing.T) {
		doc := testDoc(t, map[string]any{"name": "a"})
		clone := doc.Clone()
		assert.NoError(t, clone.Set("name", "b"))
		assert.Equal(t, "a", doc.GetString("name"))
		assert.Equal(t, "b", clone.GetString("name"))
	})
	t.Run("merge does not overwrite unrelated fields", func(t *testing.T) {
		doc := testDoc(t, map[string]any{"name": "a", "category": "Music"})
		patch := testDoc(t, map[string]any{"name": "b"})
		assert.NoError(t, doc.Merge(patch))
		assert.Equal(t, "b", doc.GetString("name"))
		assert.Equal(t, "Music", doc.GetString("category"))
	})
	t.Run("del removes a field", func(t *testing.T) {
		doc := testDoc(t, map[string]any{"name": "a", "category": "Music"})
		assert.NoError(t, doc.Del("category"))
		assert.False(t, doc.Exists("category"))
	})
	t.Run("scan into struct", func(t *testing.T) {
		type event struct {
			Name     string `json:"name"`
			Category string `json:"category"`
		}
		doc := testDoc(t, map[string]any{"name": "a", "category": "Music"})
		var e event
		assert.NoError(t, doc.Scan(&e))
		assert.Equal(t, "a", e.Name)
		assert.Equal(t, "Music", e.Category)
	})
	t.Run("json round trip", func(t *testing.T) {
		doc := testDoc(t, map[string]any{"name": "a"})
		bits, err := doc.MarshalJSON()
		assert.NoError(t, err)
		var decoded Document
		assert.NoError(t, decoded.UnmarshalJSON(bits))
		assert.Equal(t, "a", decoded.GetString("name"))
	})
}
