package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyDependsOnEveryInput(t *testing.T) {
	base := Key("1", "jyxal/Main", "a.vy", []byte("5"))
	assert.Len(t, base, 64)
	assert.Equal(t, base, Key("1", "jyxal/Main", "a.vy", []byte("5")))

	assert.NotEqual(t, base, Key("2", "jyxal/Main", "a.vy", []byte("5")))
	assert.NotEqual(t, base, Key("1", "demo/Main", "a.vy", []byte("5")))
	assert.NotEqual(t, base, Key("1", "jyxal/Main", "b.vy", []byte("5")))
	assert.NotEqual(t, base, Key("1", "jyxal/Main", "a.vy", []byte("6")))
	// field boundaries are unambiguous
	assert.NotEqual(t, Key("1", "ab", "c", nil), Key("1", "a", "bc", nil))
}

func TestGetPut(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	key := Key("1", "jyxal/Main", "a.vy", []byte("5"))

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(key, []byte{0xCA, 0xFE}))
	data, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xCA, 0xFE}, data)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(c.Dir(), key[:2]))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestConcurrentPut(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)
	key := Key("1", "jyxal/Main", "a.vy", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Put(key, []byte("same")))
		}()
	}
	wg.Wait()

	data, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "same", string(data))
}

func TestBadInputs(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	c, err := New(t.TempDir())
	require.NoError(t, err)
	_, _, err = c.Get("x")
	assert.Error(t, err)
	assert.Error(t, c.Put("", nil))
}
