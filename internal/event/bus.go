package event

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Handler observes messages. Handlers run synchronously on the publishing
// goroutine, in subscription order.
type Handler func(Message)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus fans messages out to subscribers. A panicking handler is logged and
// skipped; the remaining handlers still receive the message.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

// NewBus creates a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers m to every current subscriber.
func (b *Bus) Publish(m Message) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subs))
	for i, s := range b.subs {
		handlers[i] = s.handler
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		deliver(h, m)
	}
}

// Len reports the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func deliver(h Handler, m Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("kind", string(m.Kind())).
				Str("task_id", m.Subject()).
				Str("panic", fmt.Sprint(r)).
				Msg("event handler panicked")
		}
	}()
	h(m)
}

// Recorder keeps every message it observes.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Handle records m.
func (r *Recorder) Handle(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Kinds returns the kinds of the recorded messages in order.
func (r *Recorder) Kinds() []Kind {
	msgs := r.Messages()
	out := make([]Kind, len(msgs))
	for i, m := range msgs {
		out[i] = m.Kind()
	}
	return out
}
