// Package badge holds the agent's visible new-job counter.
package badge

import (
	"sync"
	"time"

	"jobgo-agent/internal/events"
)

type State struct {
	Text      string    `json:"text"`
	Color     string    `json:"color,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Badge is safe for concurrent use. Every change is pushed to the hub.
type Badge struct {
	mu    sync.Mutex
	state State
	hub   *events.Hub
}

func New(hub *events.Hub) *Badge {
	return &Badge{hub: hub}
}

func (b *Badge) Set(text, color string) {
	b.mu.Lock()
	b.state = State{Text: text, Color: color, UpdatedAt: time.Now().UTC()}
	st := b.state
	b.mu.Unlock()

	b.hub.Emit(events.TypeBadgeUpdated, st)
}

// Clear blanks the counter, keeping the last color.
func (b *Badge) Clear() {
	b.mu.Lock()
	b.state.Text = ""
	b.state.UpdatedAt = time.Now().UTC()
	st := b.state
	b.mu.Unlock()

	b.hub.Emit(events.TypeBadgeUpdated, st)
}

func (b *Badge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
