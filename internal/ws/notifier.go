package ws

import (
	"log"

	"github.com/google/uuid"

	"messenger/internal/domain"
)

// Broadcaster is the sink a Notifier drains into; satisfied by *Hub.
type Broadcaster interface {
	BroadcastToUsers(userIDs []int64, payload any)
}

// Notifier decouples event publication from delivery. Publish enqueues and
// returns immediately; a single consumer goroutine (Run) drains the queue
// into the hub. Cancelling the request that published an event has no
// effect on it: once enqueued, delivery is the notifier's problem.
type Notifier struct {
	sink  Broadcaster
	queue chan domain.Event
	done  chan struct{}
}

func NewNotifier(sink Broadcaster, buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 256
	}
	return &Notifier{
		sink:  sink,
		queue: make(chan domain.Event, buffer),
		done:  make(chan struct{}),
	}
}

// Run consumes the queue until Close is called. Meant to run in its own
// goroutine for the lifetime of the process.
func (n *Notifier) Run() {
	for ev := range n.queue {
		n.sink.BroadcastToUsers(ev.Recipients, ev)
	}
	close(n.done)
}

// Publish enqueues an event without blocking. Events without recipients are
// discarded; when the queue is full the event is dropped and logged —
// recipients will see the state on their next fetch.
func (n *Notifier) Publish(ev domain.Event) {
	if len(ev.Recipients) == 0 {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	select {
	case n.queue <- ev:
	default:
		log.Printf("ws: notifier queue full, dropping %s event for conversation %d", ev.Type, ev.ConversationID)
	}
}

// Close stops the consumer after the queue drains. Publish must not be
// called after Close.
func (n *Notifier) Close() {
	close(n.queue)
	<-n.done
}
