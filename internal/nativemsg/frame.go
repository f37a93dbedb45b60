// Package nativemsg speaks the browser native-messaging protocol on a pair
// of streams: every message is a 32-bit little-endian length followed by
// that many bytes of JSON.
package nativemsg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	MaxIncoming = 64 << 20 // browser to host
	MaxOutgoing = 1 << 20  // host to browser
)

var ErrFrameTooLarge = errors.New("native message too large")

// ReadFrame reads one message body. It returns io.EOF when the stream ends
// cleanly between frames.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("read frame header: %w", err)
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxIncoming {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return body, nil
}

func WriteFrame(w io.Writer, body []byte) error {
	if len(body) > MaxOutgoing {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(body))
	}
	buf := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(buf, uint32(len(body)))
	copy(buf[4:], body)
	_, err := w.Write(buf)
	return err
}
