package engine_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unoverse/unoserver/internal/game/engine"
)

// TestError_Is verifies error identity is carried by the code, surviving
// wrapping and custom messages.
func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("handling play: %w", engine.ErrNotYourTurn)
	assert.ErrorIs(t, wrapped, engine.ErrNotYourTurn)
	assert.NotErrorIs(t, wrapped, engine.ErrInvalidPlay)

	custom := &engine.Error{Code: engine.CodeRoomFull, Message: "seat 5 of 4"}
	assert.ErrorIs(t, custom, engine.ErrRoomFull,
		"same code matches regardless of message")
}

// TestIsDefect verifies only the card-not-found code is defect-class.
func TestIsDefect(t *testing.T) {
	assert.True(t, engine.IsDefect(engine.ErrCardNotFound))
	assert.True(t, engine.IsDefect(fmt.Errorf("removing: %w", engine.ErrCardNotFound)))

	assert.False(t, engine.IsDefect(engine.ErrNotYourTurn))
	assert.False(t, engine.IsDefect(engine.ErrInvalidPlay))
	assert.False(t, engine.IsDefect(errors.New("unrelated")))
	assert.False(t, engine.IsDefect(nil))
}
