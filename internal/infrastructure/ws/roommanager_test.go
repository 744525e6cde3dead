package ws

import (
	"testing"
	"time"
)

func TestDeliverReachesEveryRoomSubscriber(t *testing.T) {
	m := NewRoomManager()

	host := NewClient(nil, "host", "room-1")
	guest := NewClient(nil, "guest", "room-1")
	other := NewClient(nil, "other", "room-2")

	m.AddClient(host)
	m.AddClient(guest)
	m.AddClient(other)

	event := NewAdmitted("room-1", "req-1")
	m.Deliver(event)

	for _, c := range []*Client{host, guest} {
		select {
		case got := <-c.Message:
			if got.Type != Admitted {
				t.Fatalf("subscriber %s: expected %q, got %q", c.ID, Admitted, got.Type)
			}
		default:
			t.Fatalf("subscriber %s received nothing", c.ID)
		}
	}

	select {
	case got := <-other.Message:
		t.Fatalf("room-2 subscriber must not see room-1 events, got %q", got.Type)
	default:
	}
}

func TestDeliverSkipsSaturatedSubscriber(t *testing.T) {
	m := NewRoomManager()

	slow := NewClient(nil, "slow", "room-1")
	fast := NewClient(nil, "fast", "room-1")
	m.AddClient(slow)
	m.AddClient(fast)

	// Fill the slow subscriber's buffer completely.
	for i := 0; i < cap(slow.Message); i++ {
		slow.Message <- NewQueueCleared("room-1", 0)
	}

	// Delivery must still reach the healthy subscriber without blocking.
	m.Deliver(NewDenied("room-1", "req-9"))

	select {
	case got := <-fast.Message:
		if got.Type != Denied {
			t.Fatalf("expected %q, got %q", Denied, got.Type)
		}
	default:
		t.Fatal("healthy subscriber starved by a saturated one")
	}
}

func TestRemoveClientClosesChannelOnce(t *testing.T) {
	m := NewRoomManager()

	c := NewClient(nil, "c1", "room-1")
	m.AddClient(c)

	if got := m.SubscriberCount("room-1"); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	m.RemoveClient(c)
	m.RemoveClient(c) // second removal is a no-op, not a double close

	if got := m.SubscriberCount("room-1"); got != 0 {
		t.Fatalf("expected 0 subscribers, got %d", got)
	}

	if _, open := <-c.Message; open {
		t.Fatal("expected the message channel to be closed")
	}
}

func TestCorePublishRoutesToSubscribers(t *testing.T) {
	m := NewRoomManager()
	core := NewCore(m)
	go core.Run()

	c := NewClient(nil, "c1", "room-1")
	core.Register() <- c

	core.Publish(NewAdmitted("room-1", "req-1"))

	select {
	case got := <-c.Message:
		if got.Type != Admitted {
			t.Fatalf("expected %q, got %q", Admitted, got.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("published event never reached the subscriber")
	}

	core.Unregister() <- c
	if _, open := <-c.Message; open {
		t.Fatal("expected the channel closed after unregister")
	}
}
