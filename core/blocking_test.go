package core

import (
	"testing"
	"time"

	"github.com/guateandrew/edis/message"
)

type fakeSink struct {
	alive     bool
	delivered chan deliverResult
}

type deliverResult struct {
	reply interface{}
	err   error
}

func newFakeSink() *fakeSink {
	return &fakeSink{alive: true, delivered: make(chan deliverResult, 1)}
}

func (f *fakeSink) Deliver(reply interface{}, err error) {
	f.delivered <- deliverResult{reply, err}
}

func (f *fakeSink) Alive() bool { return f.alive }

func TestBlockingRegistry_ParkAndWakeDelivers(t *testing.T) {
	r := newBlockingRegistry()
	sink := newFakeSink()

	retried := false
	w := &waiter{
		keys:   []string{"k"},
		caller: sink,
		retry: func(a *Actor) (interface{}, error) {
			retried = true
			return []interface{}{[]byte("k"), []byte("v")}, nil
		},
	}
	r.park(w)

	if err := r.wake(nil, []byte("k")); err != nil {
		t.Fatalf("wake: %s", err)
	}
	if !retried {
		t.Errorf("wake did not invoke the waiter's retry")
	}

	select {
	case res := <-sink.delivered:
		if res.err != nil {
			t.Errorf("delivered error: %s", res.err)
		}
	default:
		t.Errorf("wake did not deliver a reply")
	}
}

func TestBlockingRegistry_WakeLeavesWaiterParkedOnNotFound(t *testing.T) {
	r := newBlockingRegistry()
	sink := newFakeSink()

	w := &waiter{
		keys:   []string{"k"},
		caller: sink,
		retry: func(a *Actor) (interface{}, error) {
			return nil, ErrNotFound
		},
	}
	r.park(w)

	if err := r.wake(nil, []byte("k")); err != nil {
		t.Fatalf("wake: %s", err)
	}

	select {
	case res := <-sink.delivered:
		t.Errorf("wake delivered a reply for a still-blocked waiter: %v", res)
	default:
	}

	queue, _ := r.byKey.Get("k")
	if len(queue) != 1 {
		t.Errorf("waiter queue after a not-found retry: got %d entries, want 1", len(queue))
	}
}

func TestBlockingRegistry_SweepDropsExpiredWaiters(t *testing.T) {
	r := newBlockingRegistry()
	sink := newFakeSink()

	past := time.Now().Add(-time.Second)
	w := &waiter{
		deadline: &past,
		keys:     []string{"k"},
		caller:   sink,
	}
	r.park(w)

	r.sweep(time.Now())

	select {
	case res := <-sink.delivered:
		if res.reply != message.Undefined {
			t.Errorf("sweep delivered %v, want message.Undefined", res.reply)
		}
	default:
		t.Errorf("sweep did not deliver to an expired waiter")
	}

	queue, _ := r.byKey.Get("k")
	if len(queue) != 0 {
		t.Errorf("waiter queue after sweep: got %d entries, want 0", len(queue))
	}
}

func TestBlockingRegistry_RemoveCallerWaiters(t *testing.T) {
	r := newBlockingRegistry()
	sink := newFakeSink()

	w := &waiter{keys: []string{"k1", "k2"}, caller: sink}
	r.park(w)

	r.removeCallerWaiters(sink, [][]byte{[]byte("k1"), []byte("k2")})

	for _, k := range []string{"k1", "k2"} {
		queue, _ := r.byKey.Get(k)
		if len(queue) != 0 {
			t.Errorf("queue for %q after removeCallerWaiters: got %d entries, want 0", k, len(queue))
		}
	}
}

func TestBlockingRegistry_WakeSkipsDeadCaller(t *testing.T) {
	r := newBlockingRegistry()
	sink := newFakeSink()
	sink.alive = false

	w := &waiter{
		keys:   []string{"k"},
		caller: sink,
		retry: func(a *Actor) (interface{}, error) {
			t.Fatalf("retry invoked for a dead caller")
			return nil, nil
		},
	}
	r.park(w)

	if err := r.wake(nil, []byte("k")); err != nil {
		t.Fatalf("wake: %s", err)
	}

	queue, _ := r.byKey.Get("k")
	if len(queue) != 0 {
		t.Errorf("queue after wake on a dead caller: got %d entries, want 0", len(queue))
	}
}
