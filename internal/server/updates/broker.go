package updates

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mutantautomate/mutant/pkg/constants"
)

// Broker distributes updates to every registered subscriber in publish order.
type Broker struct {
	subscribers []Subscriber
	updates     chan Update
	register    chan Subscriber
	unregister  chan Subscriber
	mu          sync.RWMutex
	logger      *zerolog.Logger

	published atomic.Int64
	dropped   atomic.Int64
}

// NewBroker creates a new update broker.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		updates:    make(chan Update, constants.ChannelBufferSize),
		register:   make(chan Subscriber, 10),
		unregister: make(chan Subscriber, 10),
		logger:     logger,
	}
}

// Run starts the broker's loop until ctx is cancelled.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for _, sub := range b.subscribers {
				_ = sub.Close()
			}
			b.subscribers = nil
			b.mu.Unlock()
			b.logger.Info().Msg("Update broker shut down")
			return

		case sub := <-b.register:
			b.mu.Lock()
			b.subscribers = append(b.subscribers, sub)
			total := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("total_subscribers", total).Msg("Subscriber registered")

		case sub := <-b.unregister:
			b.mu.Lock()
			if i := slices.Index(b.subscribers, sub); i >= 0 {
				b.subscribers = slices.Delete(b.subscribers, i, i+1)
				_ = sub.Close()
			}
			total := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("total_subscribers", total).Msg("Subscriber unregistered")

		case u := <-b.updates:
			b.mu.RLock()
			subs := slices.Clone(b.subscribers)
			b.mu.RUnlock()

			// Sends are non-blocking, so delivering in the loop keeps order.
			for _, sub := range subs {
				if err := sub.Send(u); err != nil {
					b.logger.Warn().Err(err).Str("type", string(u.Type)).Msg("Failed to send update to subscriber")
				}
			}
		}
	}
}

// Publish queues an update for every subscriber.
func (b *Broker) Publish(t Type, data any) {
	u := Update{Type: t, Timestamp: time.Now().UTC(), Data: data}
	select {
	case b.updates <- u:
		b.published.Add(1)
	default:
		b.dropped.Add(1)
		b.logger.Warn().Str("type", string(t)).Msg("Update channel full, update dropped")
	}
}

// Subscribe registers a subscriber. It may be called before Run.
func (b *Broker) Subscribe(sub Subscriber) {
	b.register <- sub
}

// Unsubscribe removes and closes a subscriber.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.unregister <- sub
}

// SubscriberCount returns the current number of subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Published returns the number of updates accepted by Publish.
func (b *Broker) Published() int64 { return b.published.Load() }

// Dropped returns the number of updates discarded because the queue was full.
func (b *Broker) Dropped() int64 { return b.dropped.Load() }
