package util_test

import (
	"testing"

	"github.com/gatherly/eventquery/util"
	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	type target struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	var out target
	err := util.Decode(map[string]any{"name": "acme", "age": "42"}, &out)
	assert.NoError(t, err)
	assert.Equal(t, "acme", out.Name)
	assert.Equal(t, 42, out.Age)
}

func TestValidateStruct(t *testing.T) {
	type page struct {
		Page  int `json:"page" validate:"gte=1"`
		Limit int `json:"limit" validate:"gte=1"`
	}
	assert.NoError(t, util.ValidateStruct(&page{Page: 1, Limit: 10}))
	assert.Error(t, util.ValidateStruct(&page{Page: 0, Limit: 10}))
	assert.Error(t, util.ValidateStruct(&page{Page: 1, Limit: -1}))
}

func TestYAMLToJSON(t *testing.T) {
	bits, err := util.YAMLToJSON([]byte("name: acme\nage: 42\n"))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"name":"acme","age":42}`, string(bits))

	passthrough, err := util.YAMLToJSON([]byte(`{"name":"acme"}`))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"name":"acme"}`, string(passthrough))
}

func TestJSONString(t *testing.T) {
	assert.Equal(t, `{"a":1}`, util.JSONString(map[string]any{"a": 1}))
}
