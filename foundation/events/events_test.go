package events_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/events"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("one")
	ch2 := evts.Acquire("two")

	if evts.Acquire("one") != ch1 {
		t.Fatalf("Should get back the same channel for the same id.")
	}

	if evts.Subscribers() != 2 {
		t.Fatalf("Should have 2 subscribers, got %d.", evts.Subscribers())
	}

	evts.Send("chain: mine: blk[1]")

	for _, ch := range []<-chan Event{ch1, ch2} {
		e := <-ch
		if e.Message != "chain: mine: blk[1]" {
			t.Fatalf("Should receive the message, got %q.", e.Message)
		}
	}

	if err := evts.Release("one"); err != nil {
		t.Fatalf("Should be able to release id one: %v", err)
	}

	if _, ok := <-ch1; ok {
		t.Fatalf("Should have a closed channel after release.")
	}

	if err := evts.Release("one"); err == nil {
		t.Fatalf("Should not be able to release id one twice.")
	}

	evts.Shutdown()

	if _, ok := <-ch2; ok {
		t.Fatalf("Should have a closed channel after shutdown.")
	}

	if evts.Subscribers() != 0 {
		t.Fatalf("Should have no subscribers after shutdown.")
	}
}

// Event is a local alias to keep the channel slice readable.
type Event = events.Event
