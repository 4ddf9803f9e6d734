package ram

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRAM(t *testing.T) {
	t.Run("reads back what was written", func(t *testing.T) {
		r := New(10)

		require.NoError(t, r.Write(3, 42))

		v, err := r.Read(3)
		require.NoError(t, err)
		require.Equal(t, 42, v)
	})

	t.Run("rejects out of range access", func(t *testing.T) {
		r := New(10)

		err := r.Write(10, 1)
		require.Equal(t, ErrOutOfRange, errors.Cause(err))

		_, err = r.Read(-1)
		require.Equal(t, ErrOutOfRange, errors.Cause(err))
	})

	t.Run("projects a live window", func(t *testing.T) {
		r := New(10)

		win, err := r.Project(4, 4)
		require.NoError(t, err)
		win[0] = 7

		v, err := r.Read(4)
		require.NoError(t, err)
		require.Equal(t, 7, v)

		_, err = r.Project(8, 4)
		require.Error(t, err)
	})

	t.Run("uses the default size", func(t *testing.T) {
		require.Equal(t, DefaultSize, New(0).Size())
	})
}
