package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RoutesByToken(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	a, b := uuid.New(), uuid.New()
	chA, unsubA := hub.Permissions.Subscribe(a)
	defer unsubA()
	chB, unsubB := hub.Permissions.Subscribe(b)
	defer unsubB()

	n := hub.OnPermissionResult(b, []string{"fine"}, []bool{true})
	assert.Equal(t, 1, n)

	select {
	case ev := <-chB:
		assert.Equal(t, b, ev.Token())
		assert.True(t, ev.Granted()["fine"])
	default:
		t.Fatalf("waiter b should have received its event")
	}

	select {
	case ev := <-chA:
		t.Fatalf("waiter a received an event for another token: %v", ev)
	default:
	}
	assert.Equal(t, 1, hub.Permissions.Pending())
}

func TestDispatcher_UnknownTokenDropped(t *testing.T) {
	t.Parallel()

	d := NewDispatcher[ActivityResult]("activity-result", nil)
	ch, unsub := d.Subscribe(uuid.New())
	defer unsub()

	assert.Zero(t, d.Deliver(ActivityResult{RequestToken: uuid.New(), ResultCode: ResultOK}))
	assert.Len(t, ch, 0)
}

func TestDispatcher_NilTokenBroadcasts(t *testing.T) {
	t.Parallel()

	d := NewDispatcher[ActivityResult]("activity-result", nil)
	ch1, unsub1 := d.Subscribe(uuid.New())
	defer unsub1()
	ch2, unsub2 := d.Subscribe(uuid.New())
	defer unsub2()

	require.Equal(t, 2, d.Deliver(ActivityResult{ResultCode: ResultOK}))
	assert.Len(t, ch1, 1)
	assert.Len(t, ch2, 1)
	assert.Zero(t, d.Pending())
}

func TestDispatcher_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	d := NewDispatcher[ActivityResult]("activity-result", nil)
	token := uuid.New()
	_, unsub := d.Subscribe(token)
	unsub()
	unsub()

	assert.Zero(t, d.Pending())
	assert.Zero(t, d.Deliver(ActivityResult{RequestToken: token}))
}

func TestPermissionResult_MissingGrantIsDenied(t *testing.T) {
	t.Parallel()

	ev := PermissionResult{Permissions: []string{"fine", "coarse"}, Grants: []bool{true}}
	g := ev.Granted()
	assert.True(t, g["fine"])
	assert.False(t, g["coarse"])
}
