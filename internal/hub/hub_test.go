package hub

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records frames instead of writing to a socket.
type fakeConn struct {
	frames   []Frame
	fail     bool // every write fails
	failNext int  // fail this many writes, then succeed
	closed   bool
}

func (f *fakeConn) WriteJSON(v any) error {
	if f.fail {
		return errors.New("write failed")
	}
	if f.failNext > 0 {
		f.failNext--
		return errors.New("write failed")
	}
	f.frames = append(f.frames, v.(Frame))
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func newTestHub() *Hub { return New(zerolog.Nop()) }

func TestSendToAllSessions(t *testing.T) {
	h := newTestHub()
	a := &fakeConn{}
	b := &fakeConn{}
	h.Register(1, a)
	h.Register(1, b)

	err := h.Send(1, Frame{Type: FrameNotification, Payload: "hello"})
	require.NoError(t, err)
	assert.Len(t, a.frames, 1)
	assert.Len(t, b.frames, 1)
	assert.Equal(t, FrameNotification, a.frames[0].Type)
}

func TestSendNoConnections(t *testing.T) {
	h := newTestHub()
	err := h.Send(99, Frame{Type: FrameChat})
	assert.ErrorIs(t, err, ErrNoConnections)
}

func TestSendEvictsFailedConnections(t *testing.T) {
	h := newTestHub()
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	h.Register(1, good)
	h.Register(1, bad)

	err := h.Send(1, Frame{Type: FrameChat, Payload: "hi"})
	require.NoError(t, err) // partial delivery still succeeds
	assert.True(t, bad.closed)
	assert.Equal(t, 1, h.Sessions(1))
}

func TestUnregisterClosesAndRemoves(t *testing.T) {
	h := newTestHub()
	c := &fakeConn{}
	h.Register(7, c)
	require.Equal(t, 1, h.Sessions(7))

	h.Unregister(7, c)
	assert.True(t, c.closed)
	assert.Equal(t, 0, h.Sessions(7))
}

func TestSendRetryStopsWhenNobodyListens(t *testing.T) {
	h := newTestHub()
	start := time.Now()
	err := h.SendRetry(5, Frame{Type: FrameNotification}, 3, 500*time.Millisecond)
	assert.ErrorIs(t, err, ErrNoConnections)
	// No sessions means no retries; the call must return immediately.
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSendRetryDelivers(t *testing.T) {
	h := newTestHub()
	c := &fakeConn{}
	h.Register(2, c)
	err := h.SendRetry(2, Frame{Type: FrameChat, Payload: "msg"}, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, c.frames, 1)
}

func TestSendRetryRecoversTransientFailure(t *testing.T) {
	h := newTestHub()
	c := &fakeConn{failNext: 1}
	h.Register(3, c)

	err := h.SendRetry(3, Frame{Type: FrameNotification, Payload: "msg"}, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, c.frames, 1)
	// The session survives a transient failure.
	assert.False(t, c.closed)
	assert.Equal(t, 1, h.Sessions(3))
}

func TestSendRetryEvictsAfterAllAttempts(t *testing.T) {
	h := newTestHub()
	c := &fakeConn{fail: true}
	h.Register(4, c)

	err := h.SendRetry(4, Frame{Type: FrameChat}, 2, time.Millisecond)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.True(t, c.closed)
	assert.Equal(t, 0, h.Sessions(4))
}

func TestSendRetryNoDuplicateFramesOnHealthySession(t *testing.T) {
	h := newTestHub()
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	h.Register(6, good)
	h.Register(6, bad)

	err := h.SendRetry(6, Frame{Type: FrameChat, Payload: "once"}, 3, time.Millisecond)
	require.NoError(t, err) // partial delivery still succeeds
	assert.Len(t, good.frames, 1)
	assert.True(t, bad.closed)
	assert.Equal(t, 1, h.Sessions(6))
}
