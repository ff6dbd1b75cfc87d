package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderCache_PutGet(t *testing.T) {
	c := NewRenderCache()

	_, ok := c.Get("t1", []int64{1, 2})
	assert.False(t, ok)

	c.Put("t1", []int64{2, 1}, []byte("png-a"))

	// порядок перечисления не входит в ключ
	data, ok := c.Get("t1", []int64{1, 2})
	assert.True(t, ok)
	assert.Equal(t, []byte("png-a"), data)

	// другой набор и другой шаблон — другие ячейки
	_, ok = c.Get("t1", []int64{1})
	assert.False(t, ok)
	_, ok = c.Get("t2", []int64{1, 2})
	assert.False(t, ok)
}

func TestRenderCache_EmptySet(t *testing.T) {
	c := NewRenderCache()
	c.Put("t1", nil, []byte("blank"))

	data, ok := c.Get("t1", []int64{})
	assert.True(t, ok)
	assert.Equal(t, []byte("blank"), data)
}

func TestRenderCache_InvalidateItem(t *testing.T) {
	c := NewRenderCache()
	c.Put("t1", []int64{1, 2}, []byte("a"))
	c.Put("t1", []int64{2, 3}, []byte("b"))
	c.Put("t1", []int64{3}, []byte("c"))
	c.Put("t2", []int64{1}, []byte("d"))

	// выбиваются ровно записи t1, содержащие id=1
	c.InvalidateItem("t1", 1)

	_, ok := c.Get("t1", []int64{1, 2})
	assert.False(t, ok)
	_, ok = c.Get("t1", []int64{2, 3})
	assert.True(t, ok)
	_, ok = c.Get("t1", []int64{3})
	assert.True(t, ok)
	_, ok = c.Get("t2", []int64{1})
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestRenderCache_InvalidateTemplate(t *testing.T) {
	c := NewRenderCache()
	c.Put("t1", []int64{1}, []byte("a"))
	c.Put("t1", nil, []byte("b"))
	c.Put("t2", []int64{1}, []byte("c"))

	c.InvalidateTemplate("t1")

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("t2", []int64{1})
	assert.True(t, ok)
}

func TestContainsID(t *testing.T) {
	sorted := []int64{-5, 0, 3, 9}
	assert.True(t, containsID(sorted, -5))
	assert.True(t, containsID(sorted, 9))
	assert.False(t, containsID(sorted, 4))
	assert.False(t, containsID(nil, 1))
}
