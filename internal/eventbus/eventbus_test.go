package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Publish("yearly-summary")
	select {
	case ev := <-sub:
		assert.Equal(t, "yearly-summary", ev)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	b.Unsubscribe(sub)
	b.Publish("dropped")
}

func TestBusClose(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Close()
	_, ok := <-sub
	require.False(t, ok, "channel should be closed")
	// Publish and Subscribe after Close must not panic.
	b.Publish("late")
	sub2 := b.Subscribe()
	_, ok = <-sub2
	assert.False(t, ok)
}
