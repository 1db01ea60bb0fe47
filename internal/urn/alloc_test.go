package urn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator(t *testing.T) {
	a := NewAllocator([]string{"C004", "C010", "D001", "bogus", "X900"})

	t.Run("continues after highest existing id", func(t *testing.T) {
		id, err := a.Next("C")
		require.NoError(t, err)
		assert.Equal(t, "C011", id)

		id, err = a.Next("confirm")
		require.NoError(t, err)
		assert.Equal(t, "C012", id)
	})

	t.Run("unseeded steps start at 001", func(t *testing.T) {
		id, err := a.Next("E")
		require.NoError(t, err)
		assert.Equal(t, "E001", id)
	})

	t.Run("unknown step errors", func(t *testing.T) {
		_, err := a.Next("Q")
		assert.Error(t, err)
	})

	t.Run("exhausted step errors", func(t *testing.T) {
		b := NewAllocator([]string{"K999"})
		_, err := b.Next("K")
		assert.Error(t, err)
	})
}
