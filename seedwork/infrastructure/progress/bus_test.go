package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_SubscribeThenPublish_PreservesOrder(t *testing.T) {
	b := New()
	ch := b.Subscribe("job-1")

	pct10, pct50 := 10, 50
	b.Publish(Event{JobID: "job-1", Status: StatusProcessing, Progress: &pct10})
	b.Publish(Event{JobID: "job-1", Status: StatusProcessing, Progress: &pct50})

	ev1 := <-ch
	ev2 := <-ch
	assert.Equal(t, 10, *ev1.Progress)
	assert.Equal(t, 50, *ev2.Progress)
}

func TestBus_PublishBeforeSubscribe_StillBuffered(t *testing.T) {
	b := New()
	b.Publish(Event{JobID: "job-2", Status: StatusPending})

	ch := b.Subscribe("job-2")
	select {
	case ev := <-ch:
		assert.Equal(t, StatusPending, ev.Status)
	case <-time.After(time.Second):
		t.Fatal("expected buffered event to be delivered")
	}
}

func TestBus_Publish_DropsWhenBufferFull(t *testing.T) {
	b := New()
	// No subscriber drains this, so the buffer fills and further
	// publishes must not block the caller.
	for i := 0; i < bufferSize+5; i++ {
		b.Publish(Event{JobID: "job-3", Status: StatusProcessing})
	}
	// Reaching this line at all demonstrates Publish never blocked.
}

func TestBus_ClosesChannelAfterTerminalLinger(t *testing.T) {
	b := New()
	ch := b.Subscribe("job-4")

	b.Publish(Event{JobID: "job-4", Status: StatusCompleted})

	ev := <-ch
	assert.Equal(t, StatusCompleted, ev.Status)

	select {
	case _, open := <-ch:
		assert.False(t, open, "channel should be closed after the terminal event's linger period")
	case <-time.After(linger + time.Second):
		t.Fatal("channel was not closed within linger + 1s")
	}
}
