package events

import "github.com/ethereum/go-ethereum/event"

// Bus fans committed events out to subscribers. Events are only sent after
// the commit that produced them has been persisted.
type Bus struct {
	feed  event.Feed
	scope event.SubscriptionScope
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe delivers every subsequently published event on ch.
// Slow subscribers block publication, so ch should be buffered.
func (b *Bus) Subscribe(ch chan<- Event) event.Subscription {
	return b.scope.Track(b.feed.Subscribe(ch))
}

func (b *Bus) Publish(evs []Event) {
	for _, ev := range evs {
		b.feed.Send(ev)
	}
}

// Close unsubscribes everyone.
func (b *Bus) Close() {
	b.scope.Close()
}
