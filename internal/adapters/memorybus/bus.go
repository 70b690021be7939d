// Package memorybus diffuse les événements de résolution aux abonnés SSE du processus.
package memorybus

import (
	"sync"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

const subscriberBuffer = 64

type Bus struct {
	mu    sync.Mutex
	subs  map[chan ports.Event]struct{}
	alive bool
}

func New() *Bus {
	return &Bus{subs: make(map[chan ports.Event]struct{}), alive: true}
}

func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}
	evt := ports.Event{Topic: topic, Payload: payload}
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// abonné trop lent: l'événement est perdu pour lui
		}
	}
}

func (b *Bus) Subscribe() (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
}

// Close ferme tous les abonnements; les Publish suivants sont ignorés.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.alive {
		return
	}
	b.alive = false
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}

func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
