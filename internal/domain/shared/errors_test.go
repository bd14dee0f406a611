package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel by code", func(t *testing.T) {
		err := NewDomainError("INVALID_STATE", "order 7 is DELIVERED")
		assert.True(t, errors.Is(err, ErrInvalidState))
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("approve: %w", NewDomainError("NOT_FOUND", "order 9 not found"))
		assert.ErrorIs(t, err, ErrNotFound)

		var de *DomainError
		assert.True(t, errors.As(err, &de))
		assert.Equal(t, "order 9 not found", de.Message)
	})

	t.Run("plain errors never match", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("INVALID_STATE"), ErrInvalidState))
	})
}
