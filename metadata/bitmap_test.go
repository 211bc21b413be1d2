package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/vexo/model"
)

func TestBitmapBasics(t *testing.T) {
	b := NewBitmap()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, uint64(0), b.Cardinality())

	b.Add(3)
	b.Add(7)
	b.Add(3) // duplicate is a no-op

	assert.False(t, b.IsEmpty())
	assert.Equal(t, uint64(2), b.Cardinality())
	assert.True(t, b.Contains(3))
	assert.True(t, b.Matches(7))
	assert.False(t, b.Contains(4))

	b.Remove(3)
	assert.False(t, b.Contains(3))
	assert.Equal(t, uint64(1), b.Cardinality())

	b.Clear()
	assert.True(t, b.IsEmpty())
}

func TestBitmapAddMany(t *testing.T) {
	b := NewBitmap()
	b.AddMany([]uint32{1, 2, 3, 100_000})
	assert.Equal(t, uint64(4), b.Cardinality())
	assert.True(t, b.Contains(100_000))
}

func TestBitmapSetOps(t *testing.T) {
	a := NewBitmap()
	a.AddMany([]uint32{1, 2, 3})
	b := NewBitmap()
	b.AddMany([]uint32{2, 3, 4})

	t.Run("And", func(t *testing.T) {
		x := a.Clone()
		x.And(b)
		assert.Equal(t, uint64(2), x.Cardinality())
		assert.True(t, x.Contains(2))
		assert.False(t, x.Contains(1))
	})

	t.Run("Or", func(t *testing.T) {
		x := a.Clone()
		x.Or(b)
		assert.Equal(t, uint64(4), x.Cardinality())
		assert.True(t, x.Contains(4))
	})

	t.Run("CloneIsIndependent", func(t *testing.T) {
		x := a.Clone()
		x.Add(99)
		assert.False(t, a.Contains(99))
	})
}

func TestBitmapIterationOrder(t *testing.T) {
	b := NewBitmap()
	b.AddMany([]uint32{9, 1, 5})

	var got []model.Handle
	for h := range b.Iterator() {
		got = append(got, h)
	}
	assert.Equal(t, []model.Handle{1, 5, 9}, got)

	// ForEach stops when fn returns false.
	count := 0
	b.ForEach(func(model.Handle) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestFilterFunc(t *testing.T) {
	even := FilterFunc(func(h model.Handle) bool { return h%2 == 0 })
	assert.True(t, even.Matches(4))
	assert.False(t, even.Matches(5))
	assert.Equal(t, uint64(0), even.Cardinality())
}
