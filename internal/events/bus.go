package events

import "sync"

// Kind names an event type on the wire.
type Kind string

// KindInvalidate tells listeners that a user's analysis list changed.
const KindInvalidate Kind = "invalidate"

// Event is delivered to subscribers of its user.
type Event struct {
	Type       Kind   `json:"type"`
	UserID     string `json:"-"`
	AnalysisID string `json:"analysisId,omitempty"`
}

// Invalidate builds the event published after a successful upload.
func Invalidate(userID, analysisID string) Event {
	return Event{Type: KindInvalidate, UserID: userID, AnalysisID: analysisID}
}

// AllUsers subscribes to every user's events.
const AllUsers = ""

// Bus fans events out to in-process subscribers. Delivery never blocks the
// publisher: a subscriber that has not drained its last event misses the
// next one, which is harmless for invalidation.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Event
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[int]chan Event)}
}

// Subscribe registers interest in userID's events (or AllUsers). The
// returned cancel func unsubscribes and closes the channel.
func (b *Bus) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, 1)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[int]chan Event)
	}
	b.subs[userID][id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[userID], id)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to the user's subscribers and to AllUsers subscribers.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, key := range []string{ev.UserID, AllUsers} {
		for _, ch := range b.subs[key] {
			select {
			case ch <- ev:
			default:
			}
		}
		if ev.UserID == AllUsers {
			break
		}
	}
}
