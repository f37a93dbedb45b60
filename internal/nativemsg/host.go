package nativemsg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"jobgo-agent/internal/router"
)

// Handler is the router's callback surface.
type Handler interface {
	Handle(ctx context.Context, msg router.Message, respond func(router.Response)) bool
}

// Request wraps a router message with the sender's correlation id.
type Request struct {
	ID      string         `json:"id"`
	Message router.Message `json:"message"`
}

type Reply struct {
	ID       string          `json:"id"`
	Response router.Response `json:"response"`
}

// Host serves one browser connection.
type Host struct {
	handler Handler
	log     *slog.Logger

	mu sync.Mutex // serializes frames on the writer
	w  io.Writer
}

func NewHost(h Handler, log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	return &Host{handler: h, log: log.With("component", "nativemsg")}
}

// Serve reads requests from r until EOF or ctx ends, answering on w. It
// returns after every deferred reply has been written.
func (h *Host) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	h.w = w

	var pending sync.WaitGroup
	defer pending.Wait()

	frames := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(frames)
		for {
			body, err := ReadFrame(r)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- body:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case body, ok := <-frames:
			if !ok {
				err := <-readErr
				if errors.Is(err, io.EOF) {
					h.log.Info("browser closed the connection")
					return nil
				}
				return err
			}
			h.dispatch(ctx, body, &pending)
		}
	}
}

func (h *Host) dispatch(ctx context.Context, body []byte, pending *sync.WaitGroup) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		h.log.Warn("malformed request", "err", err)
		h.reply(Reply{Response: router.Failure(fmt.Errorf("invalid message: %v", err))})
		return
	}

	id := req.ID
	pending.Add(1)
	var once sync.Once
	respond := func(resp router.Response) {
		once.Do(func() {
			defer pending.Done()
			h.reply(Reply{ID: id, Response: resp})
		})
	}
	if async := h.handler.Handle(ctx, req.Message, respond); !async {
		// fire-and-forget messages never call respond
		once.Do(pending.Done)
	}
}

func (h *Host) reply(rep Reply) {
	b, err := json.Marshal(rep)
	if err != nil {
		h.log.Error("encode reply", "id", rep.ID, "err", err)
		return
	}
	if len(b) > MaxOutgoing {
		h.log.Warn("reply too large, sending error", "id", rep.ID, "bytes", len(b))
		b, _ = json.Marshal(Reply{ID: rep.ID, Response: router.Failure(ErrFrameTooLarge)})
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := WriteFrame(h.w, b); err != nil {
		h.log.Error("write reply", "id", rep.ID, "err", err)
	}
}
