package kvutil_test

import (
	"testing"

	"github.com/gatherly/eventquery/kv/kvutil"
	"github.com/stretchr/testify/assert"
)

func TestNextPrefix(t *testing.T) {
	assert.Nil(t, kvutil.NextPrefix(nil))
	assert.Equal(t, []byte("event/"), kvutil.NextPrefix([]byte("event.")))
	assert.Equal(t, []byte{0x01}, kvutil.NextPrefix([]byte{0x00}))
	assert.Equal(t, []byte{0x01}, kvutil.NextPrefix([]byte{0x00, 0xff}))
	assert.Nil(t, kvutil.NextPrefix([]byte{0xff, 0xff}))
}
