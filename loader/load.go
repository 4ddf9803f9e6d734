package loader

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/lnvaderZlM/CS-446/log"
	"github.com/lnvaderZlM/CS-446/program"
	hclog "github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
)

type LoaderCache struct {
	mu sync.RWMutex

	cache *lru.ARCCache
}

func NewLoaderCache() *LoaderCache {
	cache, err := lru.NewARC(100)
	if err != nil {
		panic(err)
	}

	return &LoaderCache{cache: cache}
}

func (l *LoaderCache) Lookup(key string) (*program.Program, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	val, ok := l.cache.Get(key)
	if !ok {
		return nil, false
	}

	return val.(*program.Program), true
}

func (l *LoaderCache) Set(key string, p *program.Program) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cache.Add(key, p)
}

func (l *LoaderCache) Len() int {
	return l.cache.Len()
}

func NewLoader(cache *LoaderCache) *Loader {
	return &Loader{
		L:     log.L.Named("loader"),
		cache: cache,
	}
}

type Loader struct {
	L     hclog.Logger
	cache *LoaderCache
}

// Key is the cache key of a program source.
func Key(src []byte) string {
	sum := blake2b.Sum256(src)
	return base64.URLEncoding.EncodeToString(sum[:])
}

func (l *Loader) LoadFile(path string) (*program.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return l.Load(name, f)
}

// Load assembles the source read from r. Identical sources share the parsed
// words but every call returns its own Program, so call counts stay per
// catalog entry.
func (l *Loader) Load(name string, r io.Reader) (*program.Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var cacheKey string

	if l.cache != nil {
		cacheKey = Key(src)

		l.L.Debug("looking for cached program", "key", cacheKey)

		if p, ok := l.cache.Lookup(cacheKey); ok {
			return clone(name, p), nil
		}
	}

	p, err := program.Parse(name, bytes.NewReader(src))
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		l.L.Debug("cached program", "key", cacheKey, "name", name)
		l.cache.Set(cacheKey, p)
	}

	return clone(name, p), nil
}

func clone(name string, p *program.Program) *program.Program {
	c := program.New(name, p.Export())
	c.DefaultAllocSize = p.DefaultAllocSize
	return c
}
