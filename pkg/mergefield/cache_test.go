package mergefield

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateCache_Basic(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 10})
	tmpl := &PreparedTemplate{}

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("key", tmpl)
	got, ok := cache.Get("key")
	require.True(t, ok)
	assert.Same(t, tmpl, got)
	assert.Equal(t, 1, cache.Size())

	cache.Remove("key")
	_, ok = cache.Get("key")
	assert.False(t, ok)
	assert.Zero(t, cache.Size())
}

func TestTemplateCache_LRUEviction(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 2})
	a, b, c := &PreparedTemplate{}, &PreparedTemplate{}, &PreparedTemplate{}

	cache.Set("a", a)
	cache.Set("b", b)
	// touch a so that b becomes the oldest
	_, _ = cache.Get("a")
	cache.Set("c", c)

	assert.Equal(t, 2, cache.Size())
	_, ok := cache.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = cache.Get("a")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
}

func TestTemplateCache_UpdateExisting(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 2})
	first, second := &PreparedTemplate{}, &PreparedTemplate{}

	cache.Set("k", first)
	cache.Set("k", second)

	got, ok := cache.Get("k")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, cache.Size())
}

func TestTemplateCache_TTL(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 10, TTL: 20 * time.Millisecond})
	cache.Set("k", &PreparedTemplate{})

	_, ok := cache.Get("k")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)
	_, ok = cache.Get("k")
	assert.False(t, ok)
	assert.Zero(t, cache.Size())
}

func TestTemplateCache_Disabled(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 0})
	cache.Set("k", &PreparedTemplate{})
	_, ok := cache.Get("k")
	assert.False(t, ok)
}

func TestTemplateCache_Clear(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 10})
	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprint(i), &PreparedTemplate{})
	}
	require.Equal(t, 5, cache.Size())

	cache.Clear()
	assert.Zero(t, cache.Size())
	cache.Set("after", &PreparedTemplate{})
	assert.Equal(t, 1, cache.Size())
}

func TestTemplateCache_Concurrent(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 8})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprint(i % 4)
			cache.Set(key, &PreparedTemplate{})
			cache.Get(key)
			if i%5 == 0 {
				cache.Remove(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Size(), 4)
}

func TestKey(t *testing.T) {
	a := Key([]byte("template"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key([]byte("template")))
	assert.NotEqual(t, a, Key([]byte("template2")))
}

func TestEngineCachesByContent(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 4})
	engine := New(WithCache(cache))
	docx := createTestDocx(t, para(field("$name", "name")))

	first, err := engine.Prepare(bytes.NewReader(docx))
	require.NoError(t, err)
	second, err := engine.Prepare(bytes.NewReader(docx))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Size())

	other, err := engine.Prepare(bytes.NewReader(createTestDocx(t, para(field("$other", "other")))))
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, cache.Size())

	engine.ClearCache()
	assert.Zero(t, cache.Size())
}

func TestEngineWithoutCache(t *testing.T) {
	engine := New(WithCache(nil))
	docx := createTestDocx(t, para(text("x")))

	first, err := engine.Prepare(bytes.NewReader(docx))
	require.NoError(t, err)
	second, err := engine.Prepare(bytes.NewReader(docx))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	engine.ClearCache()
}
