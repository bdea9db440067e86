package errx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapStore(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, WrapStore(nil))
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		err := WrapStore(pgx.ErrNoRows)
		require.NotNil(t, err)
		assert.Equal(t, http.StatusNotFound, err.Status)
		assert.Equal(t, StoreNotFoundMessage, err.Message)
		assert.True(t, errors.Is(err, pgx.ErrNoRows))
	})

	t.Run("other errors map to bad gateway and stay unwrappable", func(t *testing.T) {
		cause := errors.New("connection reset by peer")
		err := WrapStore(cause)
		require.NotNil(t, err)
		assert.Equal(t, http.StatusBadGateway, err.Status)
		assert.Equal(t, StoreErrorMessage, err.Message)
		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "connection reset")
	})
}
