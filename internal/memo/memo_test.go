package memo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct{ body string }

func TestKey(t *testing.T) {
	assert.Equal(t, Key("site", 5), Key("site", "5"))
	assert.NotEqual(t, Key("site", 1, 2), Key("site", 2, 1))
	assert.NotEqual(t, Key("site", "1,2"), Key("site", "1", "2"))
	assert.NotEqual(t, Key("details", 5), Key("inventory", 5))

	var missing *string
	value := "DAY"
	assert.Equal(t, Key("energy", ""), Key("energy", missing))
	assert.Equal(t, Key("energy", "DAY"), Key("energy", &value))
	assert.Equal(t, Key("flag", "true"), Key("flag", true))
}

func TestCacheDo(t *testing.T) {
	for _, size := range []int{0, 8} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			c, err := New[*result](size)
			require.NoError(t, err)

			calls := 0
			fetch := func() (*result, error) {
				calls++
				return &result{body: "ok"}, nil
			}

			first, err := c.Do(Key("details", 1), fetch)
			require.NoError(t, err)
			second, err := c.Do(Key("details", "1"), fetch)
			require.NoError(t, err)

			assert.Equal(t, 1, calls)
			assert.Same(t, first, second)

			_, err = c.Do(Key("details", 2), fetch)
			require.NoError(t, err)
			assert.Equal(t, 2, calls)
			assert.Equal(t, 2, c.Len())

			hits, misses := c.Stats()
			assert.Equal(t, 1, hits)
			assert.Equal(t, 2, misses)

			c.Purge()
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestCacheErrorsNotCached(t *testing.T) {
	c, err := New[*result](0)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = c.Do("k", func() (*result, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	calls := 0
	_, err = c.Do("k", func() (*result, error) {
		calls++
		return &result{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBoundedCacheEvicts(t *testing.T) {
	c, err := New[*result](1)
	require.NoError(t, err)

	c.Add("a", &result{body: "a"})
	c.Add("b", &result{body: "b"})

	_, ok := c.Get("a")
	assert.False(t, ok)
	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", got.body)
}

func TestUnboundedCacheKeepsEverything(t *testing.T) {
	c, err := New[*result](0)
	require.NoError(t, err)
	for i := range 1000 {
		c.Add(Key("site", i), &result{})
	}
	assert.Equal(t, 1000, c.Len())
	_, ok := c.Get(Key("site", 0))
	assert.True(t, ok)
}
