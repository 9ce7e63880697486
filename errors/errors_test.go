package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/gatherly/eventquery/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	t.Run("wrap nil error", func(t *testing.T) {
		var err error
		err = errors.Wrap(err, errors.NotFound, "")
		assert.Nil(t, err)
	})
	t.Run("wrap error", func(t *testing.T) {
		var err = fmt.Errorf("not found")
		err = errors.Wrap(err, errors.NotFound, "")
		assert.Equal(t, errors.NotFound, errors.Extract(err).Code)
	})
	t.Run("new error", func(t *testing.T) {
		err := errors.New(errors.Unavailable, "store unreachable")
		assert.Equal(t, errors.Unavailable, errors.Extract(err).Code)
	})
	t.Run("new error then wrap", func(t *testing.T) {
		err := errors.New(0, "not found")
		err = errors.Wrap(err, errors.NotFound, "")
		assert.Equal(t, errors.NotFound, errors.Extract(err).Code)
	})
	t.Run("wrap keeps existing code when none given", func(t *testing.T) {
		err := errors.New(errors.Validation, "bad page")
		err = errors.Wrap(err, 0, "query failed")
		assert.Equal(t, errors.Validation, errors.Extract(err).Code)
	})
	t.Run("wrapping a coded error never self-references", func(t *testing.T) {
		err := errors.New(errors.NotFound, "document not found")
		wrapped := errors.Wrap(err, errors.Unavailable, "failed to get document")
		e := errors.Extract(wrapped)
		assert.NotSame(t, e, e.Unwrap())
		assert.True(t, stderrors.Is(wrapped, err))
		assert.Contains(t, wrapped.Error(), "document not found")
		assert.Contains(t, wrapped.Error(), "failed to get document")
	})
	t.Run("new error then wrap then remove", func(t *testing.T) {
		err := errors.New(0, "not found")
		err = errors.Wrap(err, errors.NotFound, "")
		e := errors.Extract(err).RemoveError()
		assert.Empty(t, e.Err)
	})
	t.Run("error json string", func(t *testing.T) {
		err := errors.New(0, "not found")
		err = errors.Wrap(err, errors.NotFound, "")
		e := errors.Extract(err).RemoveError()
		assert.JSONEq(t, `{ "code":404, "messages": ["not found"]}`, e.Error())
	})
}
