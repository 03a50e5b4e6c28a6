package events

import (
	"context"
	"sync"
	"time"

	"transferportal/internal/domain/models"
	"transferportal/internal/utils"
)

// Event types published on booking changes.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
)

// Channel is the pub/sub channel name used by the Redis bus.
const Channel = "bookings.events"

type Event struct {
	Type      string          `json:"type"`
	BookingID int64           `json:"booking_id"`
	UserID    int64           `json:"user_id"`
	Booking   *models.Booking `json:"booking,omitempty"`
	At        time.Time       `json:"at"`
}

// NewBookingEvent builds an event carrying a snapshot of b.
func NewBookingEvent(typ string, b models.Booking) Event {
	ev := Event{Type: typ, BookingID: b.ID, UserID: b.UserID, At: utils.NowUTC()}
	if typ != BookingDeleted {
		snapshot := b
		ev.Booking = &snapshot
	}
	return ev
}

// Bus fans booking events out to live subscribers.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns a channel of events and a cancel func that closes it.
	Subscribe(ctx context.Context) (<-chan Event, func(), error)
	Close() error
}

// MemoryBus is an in-process Bus for single-instance deployments and tests.
// Slow subscribers drop events instead of blocking publishers.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	buffer int
}

func NewMemoryBus(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = 32
	}
	return &MemoryBus{subs: map[int]chan Event{}, buffer: buffer}
}

func (b *MemoryBus) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel, nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
