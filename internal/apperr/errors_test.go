package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_WrappedChain(t *testing.T) {
	base := New(KindConflict, "seat %s is already occupied", "A1").WithSeat("A1")
	wrapped := fmt.Errorf("create reservation: %w", base)

	assert.Equal(t, KindConflict, KindOf(wrapped))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "A1", e.Seat)
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestWrap_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, cause, "persist reservation")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "persist reservation: connection reset", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidInput:       http.StatusBadRequest,
		KindInvalidIdentity:    http.StatusBadRequest,
		KindNotFound:           http.StatusNotFound,
		KindConflict:           http.StatusConflict,
		KindForbidden:          http.StatusForbidden,
		KindInvalidPrice:       http.StatusInternalServerError,
		KindInternal:           http.StatusInternalServerError,
		KindNotificationFailed: http.StatusBadGateway,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), kind)
	}
}
