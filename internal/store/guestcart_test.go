package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-shop-client/internal/model"
)

func lineFixture(productID string) model.GuestLine {
	return model.GuestLine{
		ProductID:      productID,
		Name:           "Product " + productID,
		UnitPrice:      500,
		Category:       "supplies",
		StockAvailable: 10,
	}
}

func TestGuestCartStore_Add(t *testing.T) {
	t.Run("creates a line from the snapshot", func(t *testing.T) {
		s, err := NewGuestCartStore(t.TempDir())
		require.NoError(t, err)

		line, err := s.Add(lineFixture("A"), 2)
		require.NoError(t, err)
		assert.Equal(t, 2, line.Quantity)

		lines, err := s.GetAll()
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "A", lines[0].ProductID)
		assert.Equal(t, "Product A", lines[0].Name)
	})

	t.Run("merges by product id", func(t *testing.T) {
		s, err := NewGuestCartStore(t.TempDir())
		require.NoError(t, err)

		_, err = s.Add(lineFixture("A"), 2)
		require.NoError(t, err)
		line, err := s.Add(lineFixture("A"), 3)
		require.NoError(t, err)
		assert.Equal(t, 5, line.Quantity)

		lines, err := s.GetAll()
		require.NoError(t, err)
		assert.Len(t, lines, 1)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		s, err := NewGuestCartStore(t.TempDir())
		require.NoError(t, err)

		_, err = s.Add(lineFixture("A"), 0)
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	})

	t.Run("rejects empty snapshot", func(t *testing.T) {
		s, err := NewGuestCartStore(t.TempDir())
		require.NoError(t, err)

		_, err = s.Add(model.GuestLine{}, 1)
		assert.ErrorIs(t, err, model.ErrSnapshotRequired)
	})
}

func TestGuestCartStore_SetQuantity(t *testing.T) {
	t.Run("replaces the quantity", func(t *testing.T) {
		s, err := NewGuestCartStore(t.TempDir())
		require.NoError(t, err)

		_, err = s.Add(lineFixture("A"), 2)
		require.NoError(t, err)

		line, err := s.SetQuantity("A", 7)
		require.NoError(t, err)
		assert.Equal(t, 7, line.Quantity)
	})

	t.Run("zero deletes the line", func(t *testing.T) {
		s, err := NewGuestCartStore(t.TempDir())
		require.NoError(t, err)

		_, err = s.Add(lineFixture("A"), 2)
		require.NoError(t, err)

		_, err = s.SetQuantity("A", 0)
		require.NoError(t, err)

		lines, err := s.GetAll()
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("unknown line", func(t *testing.T) {
		s, err := NewGuestCartStore(t.TempDir())
		require.NoError(t, err)

		_, err = s.SetQuantity("missing", 3)
		assert.ErrorIs(t, err, model.ErrLineNotFound)
	})
}

func TestGuestCartStore_Remove(t *testing.T) {
	s, err := NewGuestCartStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Add(lineFixture("A"), 1)
	require.NoError(t, err)
	_, err = s.Add(lineFixture("B"), 1)
	require.NoError(t, err)

	require.NoError(t, s.Remove("A"))

	lines, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "B", lines[0].ProductID)

	// removing an absent line is a no-op
	require.NoError(t, s.Remove("A"))
}

func TestGuestCartStore_Clear(t *testing.T) {
	s, err := NewGuestCartStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Add(lineFixture("A"), 1)
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	lines, err := s.GetAll()
	require.NoError(t, err)
	assert.Empty(t, lines)

	// idempotent
	require.NoError(t, s.Clear())
}

func TestGuestCartStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	s, err := NewGuestCartStore(dir)
	require.NoError(t, err)
	_, err = s.Add(lineFixture("A"), 4)
	require.NoError(t, err)

	reopened, err := NewGuestCartStore(dir)
	require.NoError(t, err)

	lines, err := reopened.GetAll()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}
