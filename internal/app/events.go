package app

import (
	"github.com/goccy/go-json"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

const (
	TopicEpisodesResolved = "episodes.resolved"
	TopicStreamResolved   = "stream.resolved"
	TopicFavoritesChanged = "favorites.changed"
)

func publishJSON(bus ports.EventBus, topic string, v any) {
	if bus == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	bus.Publish(topic, b)
}
