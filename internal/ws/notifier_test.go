package ws

import (
	"sync"
	"testing"
	"time"

	"messenger/internal/domain"
)

// recordingSink captures broadcasts and signals each delivery.
type recordingSink struct {
	mu        sync.Mutex
	delivered []deliveredEvent
	notify    chan struct{}
}

type deliveredEvent struct {
	userIDs []int64
	event   domain.Event
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan struct{}, 16)}
}

func (s *recordingSink) BroadcastToUsers(userIDs []int64, payload any) {
	s.mu.Lock()
	s.delivered = append(s.delivered, deliveredEvent{userIDs: userIDs, event: payload.(domain.Event)})
	s.mu.Unlock()
	s.notify <- struct{}{}
}

func (s *recordingSink) events() []deliveredEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]deliveredEvent, len(s.delivered))
	copy(out, s.delivered)
	return out
}

func waitForDelivery(t *testing.T, sink *recordingSink) {
	t.Helper()
	select {
	case <-sink.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestNotifierDeliversToSink(t *testing.T) {
	sink := newRecordingSink()
	n := NewNotifier(sink, 8)
	go n.Run()

	n.Publish(domain.Event{
		Type:           domain.EventNewMessage,
		Recipients:     []int64{2, 3},
		ConversationID: 10,
		MessageID:      42,
		Content:        "hello",
	})
	waitForDelivery(t, sink)
	n.Close()

	got := sink.events()
	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	d := got[0]
	if len(d.userIDs) != 2 || d.userIDs[0] != 2 || d.userIDs[1] != 3 {
		t.Fatalf("delivered to %v, want [2 3]", d.userIDs)
	}
	if d.event.Type != domain.EventNewMessage {
		t.Fatalf("delivered type %q, want %q", d.event.Type, domain.EventNewMessage)
	}
	if d.event.ID == "" {
		t.Fatal("expected Publish to assign an event id")
	}
}

func TestNotifierDiscardsEventsWithoutRecipients(t *testing.T) {
	sink := newRecordingSink()
	n := NewNotifier(sink, 8)

	n.Publish(domain.Event{Type: domain.EventNewMessage, ConversationID: 10})

	if got := len(n.queue); got != 0 {
		t.Fatalf("queue holds %d events, want 0", got)
	}
}

func TestNotifierDropsWhenQueueFull(t *testing.T) {
	sink := newRecordingSink()
	// Consumer not started: the queue fills and stays full.
	n := NewNotifier(sink, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Publish(domain.Event{Type: domain.EventNewMessage, Recipients: []int64{2}, MessageID: 1})
		n.Publish(domain.Event{Type: domain.EventNewMessage, Recipients: []int64{2}, MessageID: 2})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}

	if got := len(n.queue); got != 1 {
		t.Fatalf("queue holds %d events, want 1", got)
	}

	// Drain: only the first event survived.
	go n.Run()
	waitForDelivery(t, sink)
	n.Close()

	got := sink.events()
	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	if got[0].event.MessageID != 1 {
		t.Fatalf("delivered message %d, want 1", got[0].event.MessageID)
	}
}

func TestNotifierCloseWaitsForDrain(t *testing.T) {
	sink := newRecordingSink()
	n := NewNotifier(sink, 8)
	go n.Run()

	for i := 1; i <= 5; i++ {
		n.Publish(domain.Event{Type: domain.EventUnreadCountChanged, Recipients: []int64{2}, MessageID: int64(i)})
	}
	n.Close()

	if got := len(sink.events()); got != 5 {
		t.Fatalf("expected 5 deliveries after Close, got %d", got)
	}
}
