package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesKind(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{Validation("bad"), ErrValidation},
		{Auth(MsgNotLoggedIn), ErrAuth},
		{Forbidden("not yours"), ErrForbidden},
		{NotFound(MsgRequestNotFound), ErrNotFound},
		{Conflict(MsgRequestUnavailable), ErrConflict},
		{Unavailable("down", nil), ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.kind.Error(), func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), tt.kind)
		})
	}
}

func TestError_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Unavailable("session store unavailable", cause)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrAuth)
	assert.Equal(t, "session store unavailable: dial tcp: refused", err.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, MsgNotLoggedIn, Message(Auth(MsgNotLoggedIn)))
	assert.Equal(t, "session store unavailable", Message(fmt.Errorf("op: %w", Unavailable("session store unavailable", errors.New("x")))))
	assert.Equal(t, "", Message(errors.New("plain")))
}
