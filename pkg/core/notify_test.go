package core

import (
	"testing"
	"time"
)

type recordedNote struct {
	n       Notification
	visible bool
}

func TestNotificationQueue_ExpiresAfterTTL(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	q := NewNotificationQueue(clock, 5*time.Second)

	var events []recordedNote
	q.Subscribe(func(n Notification, visible bool) { events = append(events, recordedNote{n, visible}) })

	q.Push("saved", SeveritySuccess)
	clock.Advance(4 * time.Second)
	if _, ok := q.Current(); !ok {
		t.Fatal("notification removed before TTL")
	}

	clock.Advance(time.Second)
	if _, ok := q.Current(); ok {
		t.Fatal("notification still visible after TTL")
	}
	if len(events) != 2 || !events[0].visible || events[1].visible {
		t.Errorf("events = %+v; want show then hide", events)
	}
}

func TestNotificationQueue_LastWriteWins(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	q := NewNotificationQueue(clock, 5*time.Second)

	q.Push("first", SeverityInfo)
	clock.Advance(3 * time.Second)
	q.Push("second", SeverityDanger)

	cur, ok := q.Current()
	if !ok || cur.Message != "second" || cur.Severity != SeverityDanger {
		t.Fatalf("Current() = %+v, %v; want second/danger", cur, ok)
	}

	// The first notification's timer must not clear the second one.
	clock.Advance(3 * time.Second)
	if cur, ok := q.Current(); !ok || cur.Message != "second" {
		t.Fatalf("second notification cleared early: %+v, %v", cur, ok)
	}
	clock.Advance(2 * time.Second)
	if _, ok := q.Current(); ok {
		t.Error("second notification outlived its TTL")
	}
	if clock.Pending() != 0 {
		t.Errorf("pending timers = %d; want 0", clock.Pending())
	}
}

func TestNotificationQueue_DismissAndClose(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	q := NewNotificationQueue(clock, time.Second)

	q.Push("bye", SeverityWarning)
	q.Dismiss()
	if _, ok := q.Current(); ok {
		t.Fatal("Dismiss left notification visible")
	}

	q.Close()
	q.Push("after close", SeverityInfo)
	if _, ok := q.Current(); ok {
		t.Error("closed queue showed a notification")
	}
	if clock.Pending() != 0 {
		t.Errorf("pending timers = %d; want 0", clock.Pending())
	}
}
