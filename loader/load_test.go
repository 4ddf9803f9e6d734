package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lnvaderZlM/CS-446/log"
	"github.com/lnvaderZlM/CS-446/program"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const src = `
.alloc 40
SET r0 1
PUSH r0
TRAP
`

func TestLoader(t *testing.T) {
	log.Silence()

	t.Run("caches by content", func(t *testing.T) {
		cache := NewLoaderCache()
		l := NewLoader(cache)

		a, err := l.Load("a", strings.NewReader(src))
		require.NoError(t, err)

		b, err := l.Load("b", strings.NewReader(src))
		require.NoError(t, err)

		require.Equal(t, 1, cache.Len())
		require.Equal(t, a.Export(), b.Export())
		require.Equal(t, 40, b.DefaultAllocSize)
		require.Equal(t, "b", b.Name)

		a.CallCount++
		require.Equal(t, 0, b.CallCount)

		_, ok := cache.Lookup(Key([]byte(src)))
		require.True(t, ok)
	})

	t.Run("loads files named after their base name", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "hello.asm")
		require.NoError(t, os.WriteFile(path, []byte(src), 0644))

		p, err := NewLoader(nil).LoadFile(path)
		require.NoError(t, err)
		require.Equal(t, "hello", p.Name)
		require.Equal(t, 3, p.Instructions())
	})

	t.Run("passes parse errors through", func(t *testing.T) {
		_, err := NewLoader(NewLoaderCache()).Load("bad", strings.NewReader("NOPE"))
		require.Equal(t, program.ErrSyntax, errors.Cause(err))
	})
}
