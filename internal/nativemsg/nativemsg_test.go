package nativemsg

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobgo-agent/internal/logger"
	"jobgo-agent/internal/router"
)

func frame(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, b))
	return buf.Bytes()
}

func readReplies(t *testing.T, r io.Reader) []Reply {
	t.Helper()
	var out []Reply
	for {
		body, err := ReadFrame(r)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		var rep Reply
		require.NoError(t, json.Unmarshal(body, &rep))
		out = append(out, rep)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte(`{"type":"SCAN_NOW"}`)))
	assert.Equal(t, uint32(19), binary.LittleEndian.Uint32(buf.Bytes()[:4]))

	body, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"SCAN_NOW"}`, string(body))

	_, err = ReadFrame(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameLimits(t *testing.T) {
	assert.ErrorIs(t, WriteFrame(io.Discard, make([]byte, MaxOutgoing+1)), ErrFrameTooLarge)

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], MaxIncoming+1)
	_, err := ReadFrame(bytes.NewReader(hdr[:]))
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = ReadFrame(bytes.NewReader([]byte{1, 0}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	binary.LittleEndian.PutUint32(hdr[:], 10)
	_, err = ReadFrame(io.MultiReader(bytes.NewReader(hdr[:]), strings.NewReader("abc")))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

// scriptedHandler answers by message type the way the router does.
type scriptedHandler struct {
	clears int
}

func (s *scriptedHandler) Handle(ctx context.Context, msg router.Message, respond func(router.Response)) bool {
	switch msg.Type {
	case router.TypeScanNow:
		go func() {
			time.Sleep(20 * time.Millisecond)
			respond(router.Success(map[string]int{"new_jobs": 2}))
		}()
		return true
	case router.TypeClearBadge:
		s.clears++
		return false
	default:
		respond(router.Failure(errors.New("unknown message type: " + msg.Type)))
		return false
	}
}

func TestServe(t *testing.T) {
	var in bytes.Buffer
	in.Write(frame(t, Request{ID: "1", Message: router.Message{Type: router.TypeScanNow}}))
	in.Write(frame(t, Request{ID: "2", Message: router.Message{Type: router.TypeClearBadge}}))
	in.Write(frame(t, Request{ID: "3", Message: router.Message{Type: "PING"}}))

	h := &scriptedHandler{}
	var out bytes.Buffer
	require.NoError(t, NewHost(h, logger.Discard()).Serve(context.Background(), &in, &out))

	replies := readReplies(t, &out)
	require.Len(t, replies, 2, "clear badge gets no reply")
	assert.Equal(t, 1, h.clears)

	byID := map[string]router.Response{}
	for _, r := range replies {
		byID[r.ID] = r.Response
	}
	assert.True(t, byID["1"].OK)
	assert.Equal(t, "unknown message type: PING", byID["3"].Error)
	assert.Equal(t, "3", replies[0].ID, "immediate reply is written before the deferred one")
}

func TestServe_MalformedRequest(t *testing.T) {
	var in bytes.Buffer
	require.NoError(t, WriteFrame(&in, []byte(`{not json`)))

	var out bytes.Buffer
	require.NoError(t, NewHost(&scriptedHandler{}, logger.Discard()).Serve(context.Background(), &in, &out))

	replies := readReplies(t, &out)
	require.Len(t, replies, 1)
	assert.False(t, replies[0].Response.OK)
	assert.Contains(t, replies[0].Response.Error, "invalid message")
}

func TestServe_TruncatedStream(t *testing.T) {
	in := bytes.NewReader([]byte{5, 0, 0, 0, '{'})
	err := NewHost(&scriptedHandler{}, logger.Discard()).Serve(context.Background(), in, io.Discard)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestServe_ContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewHost(&scriptedHandler{}, logger.Discard()).Serve(ctx, pr, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_ReplyTooLargeBecomesError(t *testing.T) {
	big := strings.Repeat("x", MaxOutgoing)
	h := handlerFunc(func(ctx context.Context, msg router.Message, respond func(router.Response)) bool {
		respond(router.Success(big))
		return false
	})

	var in, out bytes.Buffer
	in.Write(frame(t, Request{ID: "9", Message: router.Message{Type: router.TypeScanNow}}))
	require.NoError(t, NewHost(h, logger.Discard()).Serve(context.Background(), &in, &out))

	replies := readReplies(t, &out)
	require.Len(t, replies, 1)
	assert.Equal(t, "9", replies[0].ID)
	assert.False(t, replies[0].Response.OK)
}

type handlerFunc func(ctx context.Context, msg router.Message, respond func(router.Response)) bool

func (f handlerFunc) Handle(ctx context.Context, msg router.Message, respond func(router.Response)) bool {
	return f(ctx, msg, respond)
}
