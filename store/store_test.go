package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := Open(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, dir, s.Dir())
}

func TestLoadMissingKey(t *testing.T) {
	t.Parallel()

	s, err := Open(t.TempDir())
	require.NoError(t, err)

	data, ok, err := s.Load("nope")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.SaveAtomic("rates", []byte(`{"pairs":{}}`)))

	data, ok, err := s.Load("rates")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"pairs":{}}`, string(data))
}

func TestSaveAtomicLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.SaveAtomic("k", []byte("1")))
	require.NoError(t, s.SaveAtomic("k", []byte("2")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "stray temp file %s", e.Name())
	}

	data, _, err := s.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))
}

func TestJSONHelpers(t *testing.T) {
	t.Parallel()

	s, err := Open(t.TempDir())
	require.NoError(t, err)

	type record struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	require.NoError(t, s.SaveJSON("rec", record{Name: "BTC_USD", Value: 50000}))

	var got record
	ok, err := s.LoadJSON("rec", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, record{Name: "BTC_USD", Value: 50000}, got)

	ok, err = s.LoadJSON("missing", &got)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadJSONCorruptFile(t *testing.T) {
	t.Parallel()

	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.SaveAtomic("bad", []byte("{not json")))

	var v map[string]any
	ok, err := s.LoadJSON("bad", &v)
	assert.True(t, ok)
	assert.Error(t, err)
}
